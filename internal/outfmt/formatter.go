package outfmt

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// Formatter writes command output in the mode selected on the context.
type Formatter struct {
	ctx       context.Context
	out       io.Writer
	errOut    io.Writer
	tabWriter *tabwriter.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{
		ctx:       ctx,
		out:       out,
		errOut:    errOut,
		tabWriter: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0),
	}
}

// Output writes data as JSON (filtered by the context's jq expression) when a
// JSON mode is active. In text mode it writes nothing and returns false, so
// the caller renders its own table.
func (f *Formatter) Output(data any) (bool, error) {
	mode := ModeFromContext(f.ctx)
	if mode == Text {
		return false, nil
	}
	result, err := ApplyQuery(data, GetQuery(f.ctx))
	if err != nil {
		return true, err
	}
	if mode == JSONL {
		if items, ok := result.([]any); ok {
			for _, item := range items {
				if err := WriteJSON(f.out, item, true); err != nil {
					return true, err
				}
			}
			return true, nil
		}
		return true, WriteJSON(f.out, result, true)
	}
	return true, WriteJSON(f.out, result, IsCompact(f.ctx))
}

// StartTable writes table headers.
func (f *Formatter) StartTable(headers ...string) {
	f.Row(headers...)
}

// Row writes a single row to the table.
func (f *Formatter) Row(columns ...string) {
	for i, col := range columns {
		if i > 0 {
			_, _ = fmt.Fprint(f.tabWriter, "\t")
		}
		_, _ = fmt.Fprint(f.tabWriter, col)
	}
	_, _ = fmt.Fprintln(f.tabWriter)
}

// EndTable flushes the table output.
func (f *Formatter) EndTable() error {
	return f.tabWriter.Flush()
}

// Println writes a line of text output.
func (f *Formatter) Println(args ...any) {
	_, _ = fmt.Fprintln(f.out, args...)
}

// Empty writes a message to stderr indicating no results.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}
