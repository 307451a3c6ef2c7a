package tools

import "encoding/json"

// Result is the envelope returned to the model for every tool call.
type Result struct {
	Success           bool   `json:"success"`
	Data              any    `json:"data,omitempty"`
	Error             string `json:"error,omitempty"`
	RequiresUserInput bool   `json:"requiresUserInput,omitempty"`
	UserInput         any    `json:"userInput,omitempty"`
}

// Ok wraps data in a successful result
func Ok(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failed result
func Fail(msg string) Result {
	return Result{Success: false, Error: msg}
}

// JSON serializes the result for a tool_result content item.
func (r Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		data, _ = json.Marshal(Fail("failed to encode tool result: " + err.Error()))
	}
	return string(data)
}
