package main

import "github.com/iksnae/storyline/cmd"

func main() {
	cmd.Execute()
}
