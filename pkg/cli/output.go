package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat selects how a command prints its result.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a --format flag value. Matching is case-insensitive.
func ParseFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if f != FormatText && f != FormatJSON {
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
	return f, nil
}

// Printer writes command results in one format.
type Printer struct {
	Format OutputFormat
	Out    io.Writer
}

// NewPrinter returns a Printer writing to out. Unknown formats print text.
func NewPrinter(format OutputFormat, out io.Writer) *Printer {
	if format != FormatJSON {
		format = FormatText
	}
	return &Printer{Format: format, Out: out}
}

// Print writes v followed by a newline. JSON output is indented; text output
// uses v's String method when it has one.
func (p *Printer) Print(v any) error {
	if p.Format == FormatJSON {
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(p.Out, v)
	return err
}

// Field is one labelled line of text output.
type Field struct {
	Label string
	Value string
}

// Fields renders as "Label:  value" lines with the values aligned.
type Fields []Field

func (fs Fields) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	for _, f := range fs {
		fmt.Fprintf(tw, "%s:\t%s\n", f.Label, f.Value)
	}
	tw.Flush()
	return strings.TrimSuffix(sb.String(), "\n")
}
