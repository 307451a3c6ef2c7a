package ui

import "errors"

// ErrCancelled is returned by every prompt the user aborts with esc or ctrl+c.
var ErrCancelled = errors.New("cancelled by user")

// Choice is one option of a selection prompt.
type Choice struct {
	Label       string
	Value       string
	Description string
}

// Field is one row of a rendered draft. Items, when set, render as a list
// instead of Value.
type Field struct {
	Label string
	Value string
	Items []string
}
