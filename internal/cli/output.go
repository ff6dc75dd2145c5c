package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/ordinal/internal/order"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Check or scenario failure
	ExitCommandError = 2 // Command error (bad arguments, unknown ids, store unreachable)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set when the command already wrote its outcome, so
	// Execute must not print the error again.
	Reported bool
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

// NewReportedFailure creates an ExitFailure whose details the command has
// already written to its output.
func NewReportedFailure(message string) *ExitError {
	return &ExitError{Code: ExitFailure, Message: message, Reported: true}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
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

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code     string `json:"code"` // NOT_FOUND, INVARIANT_VIOLATION, CONFLICT or E_COMMAND
	Message  string `json:"message"`
	ParentID string `json:"parent_id,omitempty"`
	ChildID  string `json:"child_id,omitempty"`
}

// Success outputs a successful result in the configured format.
// In text mode data is printed with fmt.Fprintln, so result types
// implement fmt.Stringer.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs err in the configured format. Engine errors keep their
// code and ids; anything else is reported as E_COMMAND.
func (f *OutputFormatter) Error(err error) error {
	cliErr := toCLIError(err)
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  cliErr,
		})
	}

	_, werr := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", cliErr.Code, cliErr.Message)
	return werr
}

func toCLIError(err error) *CLIError {
	cliErr := &CLIError{Code: "E_COMMAND", Message: err.Error()}

	var oe *order.Error
	if errors.As(err, &oe) {
		cliErr.Code = string(oe.Code)
		cliErr.ParentID = oe.ParentID
		cliErr.ChildID = oe.ChildID
	}
	return cliErr
}
