package assistant

import "fmt"

// FailureKind classifies a tool failure. The dispatcher renders these as
// conversational replies; anything outside this taxonomy propagates as an
// internal error.
type FailureKind int

const (
	// FailValidation — malformed or out-of-range tool input.
	FailValidation FailureKind = iota
	// FailAuthRequired — the operation needs an authenticated identity.
	FailAuthRequired
	// FailNotFound — the referenced product does not exist.
	FailNotFound
	// FailConflict — insufficient stock.
	FailConflict
)

// ToolError is a classified tool failure. It never crosses the dispatcher:
// the dispatcher converts it into a terminal assistant reply so the chat
// conversation continues instead of the HTTP request failing.
type ToolError struct {
	Kind    FailureKind
	Message string
}

func (e *ToolError) Error() string { return e.Message }

func validationf(format string, args ...any) *ToolError {
	return &ToolError{Kind: FailValidation, Message: fmt.Sprintf(format, args...)}
}

func authRequiredf(format string, args ...any) *ToolError {
	return &ToolError{Kind: FailAuthRequired, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) *ToolError {
	return &ToolError{Kind: FailNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) *ToolError {
	return &ToolError{Kind: FailConflict, Message: fmt.Sprintf(format, args...)}
}
