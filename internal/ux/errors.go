package ux

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/boss/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to errors that carry none. Classified
// errors already have their own suggestions and are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "permission denied") && strings.Contains(errMsg, "credentials"):
		return NewErrorWithSuggestion(err,
			"Check the permissions of ~/.boss or set BOSS_CREDENTIAL_DIR to a writable directory")
	case strings.Contains(errMsg, "permission denied"):
		return NewErrorWithSuggestion(err,
			"Check file permissions and ensure you have access to the required files/directories")
	case strings.Contains(errMsg, "x509") || strings.Contains(errMsg, "certificate"):
		return NewErrorWithSuggestion(err,
			"The API certificate is not trusted; verify BOSS_API_URL points at the right host")
	case strings.Contains(errMsg, "config.yaml"):
		return NewErrorWithSuggestion(err,
			"Inspect the effective configuration with 'boss config view'")
	case strings.Contains(errMsg, "unknown command") || strings.Contains(errMsg, "unknown flag"):
		return NewErrorWithSuggestion(err,
			"Run 'boss --help' to see available commands and flags")
	}

	return err
}

var (
	errorLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// RenderError formats err for the terminal: the message on one line, then
// any suggestions.
func RenderError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(errorLabel.Render("Error:"))
	b.WriteString(" ")

	if e, ok := errors.As(err); ok {
		b.WriteString(e.Message)
		if e.Cause != nil {
			b.WriteString(": ")
			b.WriteString(e.Cause.Error())
		}
		for _, s := range e.Suggestions {
			b.WriteString("\n")
			b.WriteString(hintStyle.Render("  • " + s))
		}
		return b.String()
	}

	b.WriteString(EnhanceError(err).Error())
	return b.String()
}
