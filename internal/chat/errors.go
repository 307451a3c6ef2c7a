package chat

import (
	"errors"
	"fmt"
)

// ErrMaxRounds is matched by errors.Is on a RoundLimitError.
var ErrMaxRounds = errors.New("exceeded maximum tool-call rounds")

// RoundLimitError is returned when one Chat call needs more model rounds
// than allowed.
type RoundLimitError struct {
	Limit int
}

func (e *RoundLimitError) Error() string {
	return fmt.Sprintf("%v (%d)", ErrMaxRounds, e.Limit)
}

func (e *RoundLimitError) Unwrap() error {
	return ErrMaxRounds
}
