package lex

import "strings"

const (
	// DefaultClass is given to a single character that no rule of the
	// current state matches.
	DefaultClass = "text"

	// EndOfText is the class of the token a Stream returns once all input
	// has been read.
	EndOfText = "$"

	// ErrorClass is the class of the token a Stream returns when reading its
	// input fails. The lexeme holds the error message.
	ErrorClass = "error"
)

// Token is a classified span of one line of text. Tokens are immutable.
type Token struct {
	class   string
	lexed   string
	state   string
	offset  int
	linePos int
	lineNum int
	line    string
}

// Class returns the space-separated tags of the token, most general first.
func (t Token) Class() string {
	return t.class
}

// Tags returns the tags of the class of the token.
func (t Token) Tags() []string {
	return strings.Fields(t.class)
}

// HasTag returns whether the class of the token includes the given tag.
func (t Token) HasTag(tag string) bool {
	for _, f := range strings.Fields(t.class) {
		if f == tag {
			return true
		}
	}
	return false
}

// Lexeme returns the text that was matched.
func (t Token) Lexeme() string {
	return t.lexed
}

// State returns the name of the grammar state the token was matched in.
func (t Token) State() string {
	return t.state
}

// Offset returns the 0-indexed byte offset of the token within its line.
func (t Token) Offset() int {
	return t.offset
}

// LinePos returns the 1-indexed character-of-line that the token starts at.
func (t Token) LinePos() int {
	return t.linePos
}

// Line returns the 1-indexed line number of the token.
func (t Token) Line() int {
	return t.lineNum
}

// FullLine returns the full text of the line the token appears on.
func (t Token) FullLine() string {
	return t.line
}

// String gives a short debug representation of the token.
func (t Token) String() string {
	return "(" + t.class + " " + strings.ReplaceAll(t.lexed, "\n", `\n`) + ")"
}

func (t Token) withLine(n int) Token {
	t.lineNum = n
	return t
}

// Merge joins runs of adjacent tokens on the same line that have the same
// class into single tokens. The engine never merges on its own; renderers use
// this to avoid emitting one span per character of a comment.
func Merge(toks []Token) []Token {
	if len(toks) == 0 {
		return nil
	}

	merged := []Token{toks[0]}
	for _, t := range toks[1:] {
		last := &merged[len(merged)-1]
		adjacent := last.lineNum == t.lineNum && last.offset+len(last.lexed) == t.offset
		if adjacent && last.class == t.class {
			last.lexed += t.lexed
			continue
		}
		merged = append(merged, t)
	}

	return merged
}
