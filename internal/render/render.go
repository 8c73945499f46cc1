package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"inspectline/internal/report"
)

// ErrRender is returned when a block stream contains something a renderer
// does not know how to emit.
var ErrRender = errors.New("render failed")

// Renderer turns an assembled block stream into one concrete output format.
type Renderer interface {
	Render(w io.Writer, blocks []report.Block) error
}

// Text renders the block stream as terminal text. Headings carry markdown
// style hash prefixes so the nesting survives plain output; tables go through
// the same table writer the CLI uses elsewhere.
type Text struct {
	// Color turns on ANSI styling for bold runs and headings. Leave it off
	// when the output is piped or written to a file.
	Color bool
}

func (r Text) Render(w io.Writer, blocks []report.Block) error {
	for _, b := range blocks {
		var err error
		switch v := b.(type) {
		case report.Heading:
			err = r.heading(w, v)
		case report.Paragraph:
			_, err = fmt.Fprintf(w, "%s\n\n", r.runs(v.Text))
		case report.Figure:
			_, err = fmt.Fprintf(w, "%s\n(%s)\n\n", v.Caption, v.Path)
		case report.Table:
			err = r.table(w, v)
		default:
			err = fmt.Errorf("%w: unknown block %T", ErrRender, b)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r Text) heading(w io.Writer, h report.Heading) error {
	s := h.Text
	if r.Color {
		s = text.Bold.Sprint(s)
	}
	_, err := fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", h.Level), s)
	return err
}

func (r Text) runs(t report.Text) string {
	var sb strings.Builder
	for _, run := range t {
		if run.Bold && r.Color {
			sb.WriteString(text.Bold.Sprint(run.Text))
		} else {
			sb.WriteString(run.Text)
		}
	}
	return sb.String()
}

func (r Text) table(w io.Writer, t report.Table) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	header := make(table.Row, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, cells := range t.Rows {
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = r.runs(cell)
		}
		tw.AppendRow(row)
	}
	tw.Render()
	_, err := fmt.Fprintln(w)
	return err
}
