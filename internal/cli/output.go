package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/KirkDiggler/dicetray/internal/view"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The roll or read ran but did not succeed
	ExitCommandError = 2 // Bad arguments, configuration or connection
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// textView prints controller output for a terminal. Roll progress goes to
// out, notices to errOut; history is kept until the command prints it.
type textView struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	label   string
	history *view.History
}

func newTextView(out, errOut io.Writer) *textView {
	return &textView{
		out:    out,
		errOut: errOut,
	}
}

func (v *textView) RenderSelection(label string, _ int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = label
}

func (v *textView) RenderRolling() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "Rolling %s...\n", v.label)
}

func (v *textView) RenderResult(display, total string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "%s: %s\n", v.label, display)
	if total != "" {
		fmt.Fprintln(v.out, total)
	}
}

func (v *textView) RenderHistory(history *view.History) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history = history
}

func (v *textView) Notice(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.errOut, message)
}

// lastHistory returns the most recent history render
func (v *textView) lastHistory() *view.History {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.history
}
