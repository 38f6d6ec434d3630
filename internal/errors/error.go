package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
)

// Category groups codes by the part of the system that reports them.
type Category string

const (
	CategoryAccess   Category = "access"
	CategoryScope    Category = "scope"
	CategoryAction   Category = "action"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
	CategoryDevtools Category = "devtools"
)

// Location is the file and line of the call that triggered a diagnostic.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// SourceLine is one line of the excerpt shown around a Location.
type SourceLine struct {
	Number int
	Text   string
}

// StoreError is a coded diagnostic. Code and Message come from the
// registry; Detail, Location and Cause describe the particular occurrence.
type StoreError struct {
	Code       string
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	Location   *Location
	Source     []SourceLine
	Cause      error
}

func (e *StoreError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

func (e *StoreError) Unwrap() error { return e.Cause }

// At records the call site and loads up to two lines of source on each
// side of it. An unreadable file leaves Source empty.
func (e *StoreError) At(file string, line int) *StoreError {
	e.Location = &Location{File: file, Line: line}
	e.Source = excerpt(file, line, 2)
	return e
}

// WithDetail replaces the registered explanation.
func (e *StoreError) WithDetail(d string) *StoreError {
	e.Detail = d
	return e
}

// WithSuggestion replaces the registered fix.
func (e *StoreError) WithSuggestion(s string) *StoreError {
	e.Suggestion = s
	return e
}

// Wrap sets the underlying cause.
func (e *StoreError) Wrap(err error) *StoreError {
	e.Cause = err
	return e
}

func excerpt(file string, line, radius int) []SourceLine {
	data, err := os.ReadFile(file)
	if err != nil || line < 1 {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	if line > len(lines) {
		return nil
	}
	first := max(line-radius, 1)
	last := min(line+radius, len(lines))
	out := make([]SourceLine, 0, last-first+1)
	for n := first; n <= last; n++ {
		out = append(out, SourceLine{Number: n, Text: lines[n-1]})
	}
	return out
}

// New returns a diagnostic filled from the registry entry for code. An
// unregistered code yields a bare "Unknown error".
func New(code string) *StoreError {
	t, ok := registry[code]
	if !ok {
		return &StoreError{Code: code, Message: "Unknown error"}
	}
	return &StoreError{
		Code:       code,
		Category:   t.Category,
		Message:    t.Message,
		Detail:     t.Detail,
		Suggestion: t.Suggestion,
	}
}

// Newf returns an uncoded diagnostic.
func Newf(category Category, format string, args ...any) *StoreError {
	return &StoreError{Category: category, Message: fmt.Sprintf(format, args...)}
}

// FromError returns the first StoreError in err's chain, or wraps err in a
// new diagnostic for code. It returns nil for a nil err.
func FromError(err error, code string) *StoreError {
	if err == nil {
		return nil
	}
	var se *StoreError
	if stderrors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}
