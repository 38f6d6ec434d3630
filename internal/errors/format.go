package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// useColor starts off when NO_COLOR is set.
var useColor = os.Getenv("NO_COLOR") == ""

// SetColor turns ANSI styling in Format on or off.
func SetColor(on bool) { useColor = on }

const (
	sgrReset = "\033[0m"
	sgrBold  = "\033[1m"
	sgrRed   = "\033[31m"
	sgrCyan  = "\033[36m"
	sgrDim   = "\033[2m"
)

func paint(sgr, s string) string {
	if !useColor || s == "" {
		return s
	}
	return sgr + s + sgrReset
}

// textWidth is the column at which Detail is wrapped.
const textWidth = 72

// Format renders the diagnostic over several lines: the code and message,
// the call site with a source excerpt, the explanation, the fix and the
// cause, each only when present.
func (e *StoreError) Format() string {
	var b strings.Builder

	head := e.Message
	if e.Code != "" {
		head = paint(sgrRed+sgrBold, e.Code) + " " + head
	}
	if e.Category != "" {
		head += paint(sgrDim, " ("+string(e.Category)+")")
	}
	b.WriteString(head + "\n")

	if e.Location != nil {
		fmt.Fprintf(&b, "  at %s\n", paint(sgrCyan, e.Location.String()))
		for _, l := range e.Source {
			marker := "   "
			if l.Number == e.Location.Line {
				marker = paint(sgrRed, ">") + "  "
			}
			fmt.Fprintf(&b, "  %s%5d  %s\n", marker, l.Number, l.Text)
		}
	}
	for _, line := range wrap(e.Detail, textWidth) {
		b.WriteString("  " + line + "\n")
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n", paint(sgrCyan, "fix:"), e.Suggestion)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, "  %s %v\n", paint(sgrDim, "cause:"), e.Cause)
	}
	return b.String()
}

// FormatCompact renders the diagnostic on one line, prefixed by the call
// site when known, in the style of compiler output.
func (e *StoreError) FormatCompact() string {
	s := e.Error()
	if e.Location != nil {
		s = e.Location.String() + ": " + s
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

type jsonError struct {
	Code       string    `json:"code,omitempty"`
	Category   Category  `json:"category"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Cause      string    `json:"cause,omitempty"`
}

// FormatJSON renders the diagnostic as a JSON object.
func (e *StoreError) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
	}
	if e.Cause != nil {
		out.Cause = e.Cause.Error()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Error())
	}
	return string(data)
}

// wrap splits text into lines no longer than width, breaking on spaces.
// A single word longer than width gets a line to itself.
func wrap(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Print writes err to w. Errors without a code are reported under CS121.
// compact selects the single-line form.
func Print(w io.Writer, err error, compact bool) {
	se := FromError(err, "CS121")
	if se == nil {
		return
	}
	if compact {
		fmt.Fprintln(w, se.FormatCompact())
		return
	}
	fmt.Fprint(w, "\n"+se.Format()+"\n")
}
