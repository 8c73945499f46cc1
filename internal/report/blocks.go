// Package report walks an inspection record and produces the ordered list of
// renderer-agnostic document blocks: headings, paragraphs, figures and
// tables. The external document renderer consumes the blocks in order.
package report

import "strings"

// Block is one unit of the emitted document stream.
type Block interface {
	block()
}

// Heading is a document heading, levels 1 through 4.
type Heading struct {
	Level int
	Text  string
}

// Run is a span of paragraph text with one style.
type Run struct {
	Text string
	Bold bool
}

// Text is styled paragraph or table-cell content.
type Text []Run

// String flattens the runs without styling.
func (t Text) String() string {
	var b strings.Builder
	for _, r := range t {
		b.WriteString(r.Text)
	}
	return b.String()
}

func plain(s string) Text { return Text{{Text: s}} }

// Paragraph is a block of styled text.
type Paragraph struct {
	Text Text
}

// Figure is an inline picture with its caption.
type Figure struct {
	Path    string
	Caption string
}

// Table is a simple table with a bold header row.
type Table struct {
	Header []string
	Rows   [][]Text
}

func (Heading) block()   {}
func (Paragraph) block() {}
func (Figure) block()    {}
func (Table) block()     {}
