package runner

import (
	"errors"
	"fmt"

	"github.com/petasbytes/weather-agent/tools"
)

var (
	// ErrUnknownTool is tools.ErrUnknownTool, so either can be matched.
	ErrUnknownTool      = tools.ErrUnknownTool
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrToolPanic        = errors.New("tool panicked")
	ErrOverBudget       = errors.New("newest message group exceeds token budget")
)

// CallError reports a requested call that was abandoned. No tool message is
// appended for it.
type CallError struct {
	CallID string
	Tool   string
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("tool call %s (%s): %v", e.CallID, e.Tool, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }
