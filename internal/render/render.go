// Package render turns tokenized lines into output for a terminal, a web page,
// or another program.
package render

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dekarrin/rosed"
	"github.com/dekarrin/sheetlex/internal/grammar"
	"github.com/dekarrin/sheetlex/internal/lex"
	"github.com/dekarrin/sheetlex/internal/theme"
	"github.com/muesli/termenv"
)

// Format is an output format.
type Format string

const (
	FormatANSI   Format = "ansi"
	FormatHTML   Format = "html"
	FormatTokens Format = "tokens"
	FormatJSON   Format = "json"
)

func (f Format) String() string {
	return string(f)
}

// ParseFormat parses the name of an output format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case FormatANSI.String():
		return FormatANSI, nil
	case FormatHTML.String():
		return FormatHTML, nil
	case FormatTokens.String():
		return FormatTokens, nil
	case FormatJSON.String():
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("output format not one of 'ansi', 'html', 'tokens', or 'json': %q", s)
	}
}

// Options configure a Renderer.
type Options struct {
	Theme theme.Theme

	// Color forces ANSI output to use 256-color escapes even when the output
	// is not a terminal.
	Color bool

	// Width is the width of token tables. Defaults to 80.
	Width int
}

// Renderer renders one line at a time. Header and Footer wrap the output of
// a whole document.
type Renderer interface {
	Header() string
	Line(lineNum int, line string, toks []lex.Token, endState string) (string, error)
	Footer() string
}

// New creates a Renderer for the given format.
func New(f Format, opts Options) (Renderer, error) {
	if opts.Theme.Styles == nil {
		opts.Theme = theme.Default()
	}
	if opts.Width < 1 {
		opts.Width = 80
	}

	switch f {
	case FormatANSI:
		return newANSI(opts), nil
	case FormatHTML:
		return htmlRenderer{th: opts.Theme}, nil
	case FormatTokens:
		return tableRenderer{width: opts.Width}, nil
	case FormatJSON:
		return jsonRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", f.String())
	}
}

type ansiRenderer struct {
	th     theme.Theme
	r      *lipgloss.Renderer
	styles map[string]lipgloss.Style
}

func newANSI(opts Options) *ansiRenderer {
	r := lipgloss.DefaultRenderer()
	if opts.Color {
		r = lipgloss.NewRenderer(io.Discard)
		r.SetColorProfile(termenv.ANSI256)
	}
	return &ansiRenderer{
		th:     opts.Theme,
		r:      r,
		styles: map[string]lipgloss.Style{},
	}
}

func (ar *ansiRenderer) Header() string { return "" }
func (ar *ansiRenderer) Footer() string { return "" }

func (ar *ansiRenderer) Line(lineNum int, line string, toks []lex.Token, endState string) (string, error) {
	var sb strings.Builder
	for _, tok := range lex.Merge(toks) {
		st, ok := ar.styleFor(tok.Class())
		if !ok {
			sb.WriteString(tok.Lexeme())
			continue
		}
		sb.WriteString(st.Render(tok.Lexeme()))
	}
	return sb.String(), nil
}

func (ar *ansiRenderer) styleFor(class string) (lipgloss.Style, bool) {
	if st, ok := ar.styles[class]; ok {
		return st, true
	}

	ts, ok := ar.th.Lookup(class)
	if !ok || ts.IsZero() {
		return lipgloss.Style{}, false
	}

	st := ar.r.NewStyle().
		Bold(ts.Bold).
		Italic(ts.Italic).
		Underline(ts.Underline).
		TabWidth(lipgloss.NoTabConversion)
	if ts.Foreground != "" {
		st = st.Foreground(lipgloss.Color(ts.Foreground))
	}
	if ts.Background != "" {
		st = st.Background(lipgloss.Color(ts.Background))
	}

	ar.styles[class] = st
	return st, true
}

type htmlRenderer struct {
	th theme.Theme
}

// CSSClasses gives the HTML classes for a token class: every tag, split on
// dots, prefixed with "sheet_". Characters that are not valid in a class name
// never occur since derived tags are normalized.
func CSSClasses(class string) []string {
	var out []string
	for _, tag := range strings.Fields(class) {
		for _, part := range strings.Split(tag, ".") {
			if part != "" {
				out = append(out, "sheet_"+part)
			}
		}
	}
	return out
}

// cssSelector gives the selector matching every element that has all of the
// classes CSSClasses makes for tag.
func cssSelector(tag string) string {
	return ".sheet_" + strings.ReplaceAll(tag, ".", ".sheet_")
}

func (hr htmlRenderer) Header() string {
	var sb strings.Builder
	sb.WriteString("<style>\n")
	for _, tag := range hr.th.Tags() {
		st := hr.th.Styles[tag]
		var decls []string
		if strings.HasPrefix(st.Foreground, "#") {
			decls = append(decls, "color: "+st.Foreground)
		}
		if strings.HasPrefix(st.Background, "#") {
			decls = append(decls, "background-color: "+st.Background)
		}
		if st.Bold {
			decls = append(decls, "font-weight: bold")
		}
		if st.Italic {
			decls = append(decls, "font-style: italic")
		}
		if st.Underline {
			decls = append(decls, "text-decoration: underline")
		}
		if len(decls) == 0 {
			continue
		}
		sb.WriteString("pre.sheet " + cssSelector(tag) + " { " + strings.Join(decls, "; ") + " }\n")
	}
	sb.WriteString("</style>\n<pre class=\"sheet\">")
	return sb.String()
}

func (hr htmlRenderer) Footer() string {
	return "</pre>\n"
}

func (hr htmlRenderer) Line(lineNum int, line string, toks []lex.Token, endState string) (string, error) {
	var sb strings.Builder
	for _, tok := range lex.Merge(toks) {
		text := html.EscapeString(tok.Lexeme())
		if tok.Class() == "" || tok.Class() == lex.DefaultClass {
			sb.WriteString(text)
			continue
		}
		sb.WriteString(`<span class="` + strings.Join(CSSClasses(tok.Class()), " ") + `">` + text + "</span>")
	}
	return sb.String(), nil
}

type tableRenderer struct {
	width int
}

func (tr tableRenderer) Header() string { return "" }
func (tr tableRenderer) Footer() string { return "" }

func (tr tableRenderer) Line(lineNum int, line string, toks []lex.Token, endState string) (string, error) {
	data := [][]string{{"Pos", "State", "Lexeme", "Class"}}
	for _, tok := range toks {
		data = append(data, []string{
			strconv.Itoa(lineNum) + ":" + strconv.Itoa(tok.LinePos()),
			tok.State(),
			strconv.Quote(tok.Lexeme()),
			tok.Class(),
		})
	}

	footer := "\n-> " + endState
	if len(toks) == 0 {
		return "(no tokens)" + footer, nil
	}

	return rosed.Edit(footer).
		InsertTableOpts(0, data, tr.width, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String(), nil
}

// TokenModel is the JSON form of a token.
type TokenModel struct {
	Class  string `json:"class"`
	Text   string `json:"text"`
	Offset int    `json:"offset"`
	Column int    `json:"column"`
	State  string `json:"state"`
}

// LineModel is the JSON form of a tokenized line.
type LineModel struct {
	Line     int          `json:"line"`
	Tokens   []TokenModel `json:"tokens"`
	EndState string       `json:"end_state"`
}

// NewLineModel converts a tokenized line into its JSON form.
func NewLineModel(lineNum int, toks []lex.Token, endState string) LineModel {
	lm := LineModel{
		Line:     lineNum,
		Tokens:   make([]TokenModel, len(toks)),
		EndState: endState,
	}
	for i, tok := range toks {
		lm.Tokens[i] = TokenModel{
			Class:  tok.Class(),
			Text:   tok.Lexeme(),
			Offset: tok.Offset(),
			Column: tok.LinePos(),
			State:  tok.State(),
		}
	}
	return lm
}

type jsonRenderer struct{}

func (jr jsonRenderer) Header() string { return "" }
func (jr jsonRenderer) Footer() string { return "" }

// Line gives one JSON object per line (JSON Lines).
func (jr jsonRenderer) Line(lineNum int, line string, toks []lex.Token, endState string) (string, error) {
	data, err := json.Marshal(NewLineModel(lineNum, toks, endState))
	if err != nil {
		return "", fmt.Errorf("marshal tokens: %w", err)
	}
	return string(data), nil
}

// GrammarTable gives a text table of every rule of every state of g.
func GrammarTable(g *grammar.Grammar, width int) string {
	data := [][]string{{"State", "#", "Pattern", "Class", "Next"}}

	for _, name := range g.States() {
		st, _ := g.State(name)
		for i, r := range st.Rules() {
			pat := r.Pattern()
			if len(pat) > 40 {
				pat = pat[:37] + "..."
			}
			data = append(data, []string{name, strconv.Itoa(i), pat, r.Classifier().String(), r.Next()})
		}
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, width, rosed.Options{
			TableHeaders: true,
		}).
		String()
}
