package lex

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rezi"
)

// Document keeps the tokens and end state of every line of a text so that an
// edit only needs the lines from the first changed one up to where the state
// flowing out of a line is the same as it was before the edit.
//
// A Document must be created with NewDocument or decoded with UnmarshalBinary.
// It is not safe for concurrent modification.
type Document struct {
	eng   *Engine
	start string
	lines []string
	toks  [][]Token
	ends  []string
}

// NewDocument creates a Document holding the given text, tokenized from the
// start state of the grammar.
func (e *Engine) NewDocument(text string) *Document {
	d := &Document{eng: e, start: e.g.Start()}
	d.SetText(text)
	return d
}

// WithEngine makes e the Engine that tokenizes the document from now on and
// returns the document. If e has a different grammar than the one the
// document was tokenized with, every line is tokenized again.
func (d *Document) WithEngine(e *Engine) *Document {
	old := d.eng
	d.eng = e
	if old != nil && old.g == e.g {
		return d
	}

	if !e.g.Has(d.start) {
		d.start = e.g.Start()
	}
	if len(d.lines) > 0 {
		d.SetText(d.Text())
	}
	return d
}

// Engine returns the Engine that tokenizes the document.
func (d *Document) Engine() *Engine {
	return d.eng
}

// SetText replaces the entire content of the document.
func (d *Document) SetText(text string) {
	d.lines = splitLines(text)
	d.toks = make([][]Token, len(d.lines))
	d.ends = make([]string, len(d.lines))

	state := d.start
	for i := range d.lines {
		d.toks[i], d.ends[i] = d.eng.TokenizeLineAt(state, d.lines[i], i+1)
		state = d.ends[i]
	}
}

// Len returns the number of lines in the document.
func (d *Document) Len() int {
	return len(d.lines)
}

// Text returns the content of the document.
func (d *Document) Text() string {
	return strings.Join(d.lines, "\n")
}

// Line returns the text of the 0-indexed line n.
func (d *Document) Line(n int) string {
	return d.lines[n]
}

// Tokens returns the tokens of the 0-indexed line n.
func (d *Document) Tokens(n int) []Token {
	out := make([]Token, len(d.toks[n]))
	for i := range d.toks[n] {
		out[i] = d.toks[n][i].withLine(n + 1)
	}
	return out
}

// EndState returns the state at the end of the 0-indexed line n.
func (d *Document) EndState(n int) string {
	return d.ends[n]
}

// StartState returns the state at the start of the 0-indexed line n.
func (d *Document) StartState(n int) string {
	if n == 0 {
		return d.start
	}
	return d.ends[n-1]
}

// Edit replaces lines [start, end) with newLines and re-tokenizes what the
// edit affects. It returns the range of lines [from, to) whose tokens were
// recomputed, in line numbers after the edit.
func (d *Document) Edit(start, end int, newLines []string) (from, to int, err error) {
	if start < 0 || end < start || end > len(d.lines) {
		return 0, 0, fmt.Errorf("edit range [%d, %d) is outside of document with %d lines", start, end, len(d.lines))
	}
	for i := range newLines {
		if strings.ContainsAny(newLines[i], "\r\n") {
			return 0, 0, fmt.Errorf("replacement line %d contains a line break", i)
		}
	}

	d.lines = spliceStrings(d.lines, start, end, newLines)
	d.ends = spliceStrings(d.ends, start, end, make([]string, len(newLines)))

	toks := make([][]Token, 0, len(d.toks)-(end-start)+len(newLines))
	toks = append(toks, d.toks[:start]...)
	toks = append(toks, make([][]Token, len(newLines))...)
	toks = append(toks, d.toks[end:]...)
	d.toks = toks

	afterInserted := start + len(newLines)
	state := d.StartState(start)

	i := start
	for i < len(d.lines) {
		prevEnd := d.ends[i]
		d.toks[i], d.ends[i] = d.eng.TokenizeLineAt(state, d.lines[i], i+1)
		state = d.ends[i]
		i++

		if i > afterInserted && state == prevEnd {
			// everything after here starts in the same state as it did
			// before, so its tokens are unchanged
			break
		}
	}

	return start, i, nil
}

// MarshalBinary encodes the document's start state and lines. Tokens are not
// stored; they are recomputed when decoding.
func (d *Document) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncString(d.start)...)
	data = append(data, rezi.EncInt(len(d.lines))...)
	for i := range d.lines {
		data = append(data, rezi.EncString(d.lines[i])...)
	}

	return data, nil
}

// UnmarshalBinary decodes a document created with MarshalBinary and tokenizes
// it. If the Document has no Engine, one using the Sheet grammar is created.
func (d *Document) UnmarshalBinary(data []byte) error {
	var err error
	var n int

	var start string
	start, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("start state: %w", err)
	}
	data = data[n:]

	var count int
	count, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("line count: %w", err)
	}
	data = data[n:]

	lines := make([]string, count)
	for i := 0; i < count; i++ {
		lines[i], n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		data = data[n:]
	}

	if d.eng == nil {
		d.eng = New(nil)
	}
	d.start = start
	if !d.eng.g.Has(d.start) {
		d.start = d.eng.g.Start()
	}
	d.SetText(strings.Join(lines, "\n"))

	// SetText splits on newlines, so an empty document of zero lines and one
	// of a single empty line would be confused without this
	if count == 0 {
		d.lines = nil
		d.toks = nil
		d.ends = nil
	}

	return nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func spliceStrings(s []string, start, end int, repl []string) []string {
	out := make([]string, 0, len(s)-(end-start)+len(repl))
	out = append(out, s[:start]...)
	out = append(out, repl...)
	out = append(out, s[end:]...)
	return out
}
