package request

import "fmt"

// errors.go defines the terminal-error taxonomy (§7): statuses that must
// stop the retry machine outright rather than being retried.

// TerminalError marks a response the retry machine must not retry. Code
// identifies the condition independent of the exact status observed, so a
// dynamically-built TerminalError still compares equal via errors.Is to a
// Code-only sentinel.
type TerminalError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *TerminalError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("terminal error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("terminal error %d (%s)", e.StatusCode, e.Code)
}

// Is matches by Code alone, so sentinels with a zero StatusCode can be used
// against a terminal error built from a live response.
func (e *TerminalError) Is(target error) bool {
	t, ok := target.(*TerminalError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewTerminalError builds a TerminalError carrying the observed status.
func NewTerminalError(statusCode int, code, message string) *TerminalError {
	return &TerminalError{StatusCode: statusCode, Code: code, Message: message}
}

var (
	ErrNotFound        = &TerminalError{Code: "not_found"}
	ErrUnavailable     = &TerminalError{Code: "unavailable"}
	ErrTrafficExceeded = &TerminalError{Code: "traffic_exceeded"}
)
