// Package lex runs a grammar over text one line at a time. At every offset it
// tries the rules of the current state in order and takes the first one that
// matches exactly there; the state left at the end of a line is where the
// next line starts.
package lex

import (
	"unicode/utf8"

	"github.com/dekarrin/sheetlex/internal/grammar"
	"github.com/rs/zerolog"
)

// Engine tokenizes lines of text with a grammar. An Engine holds no state of
// its own between calls and may be shared between goroutines.
type Engine struct {
	g   *grammar.Grammar
	log zerolog.Logger
}

// New creates an Engine for the given grammar. If g is nil, the Sheet grammar
// is used.
func New(g *grammar.Grammar) *Engine {
	if g == nil {
		g = grammar.Sheet()
	}
	return &Engine{
		g:   g,
		log: zerolog.Nop(),
	}
}

// WithLogger returns a copy of the Engine that logs to the given logger.
func (e *Engine) WithLogger(log zerolog.Logger) *Engine {
	cp := *e
	cp.log = log
	return &cp
}

// Grammar returns the grammar used by the Engine.
func (e *Engine) Grammar() *grammar.Grammar {
	return e.g
}

// TokenizeLine tokenizes a single line starting in the given state. It returns
// the tokens and the state that the next line should start in. line must not
// contain a line break.
func (e *Engine) TokenizeLine(state string, line string) ([]Token, string) {
	return e.TokenizeLineAt(state, line, 1)
}

// TokenizeLineAt is TokenizeLine for a line with the given 1-indexed line
// number.
func (e *Engine) TokenizeLineAt(state string, line string, lineNum int) ([]Token, string) {
	if !e.g.Has(state) {
		e.log.Warn().Str("state", state).Int("line", lineNum).Msg("unknown state; restarting from start state")
		state = e.g.Start()
	}

	var toks []Token
	offset := 0
	linePos := 1

	// zero-width transitions don't consume input, so bound how many can
	// happen in a row in case some of them form a cycle.
	zeroRun := 0
	maxZeroRun := len(e.g.States())

	for {
		st, _ := e.g.State(state)

		matched := false
		for i := 0; i < st.Len() && zeroRun <= maxZeroRun; i++ {
			rule := st.Rule(i)
			n, ok := rule.Match(line, offset)
			if !ok {
				continue
			}
			if n == 0 && (rule.Next() == "" || rule.Next() == state) {
				// would never make progress
				continue
			}

			matched = true
			if n > 0 {
				lexeme := line[offset : offset+n]
				class := rule.Classifier().Classify(grammar.MatchContext{
					Text:  lexeme,
					State: state,
					Line:  line,
					Pos:   offset,
				})
				toks = append(toks, Token{
					class:   class,
					lexed:   lexeme,
					state:   state,
					offset:  offset,
					linePos: linePos,
					lineNum: lineNum,
					line:    line,
				})
				offset += n
				linePos += utf8.RuneCountInString(lexeme)
				zeroRun = 0
			} else {
				zeroRun++
			}

			if rule.Next() != "" {
				e.log.Debug().Str("from", state).Str("to", rule.Next()).Int("line", lineNum).Int("offset", offset).Msg("state change")
				state = rule.Next()
			}
			break
		}

		if matched {
			continue
		}

		if offset >= len(line) {
			break
		}

		// nothing matched; give one character the default class so that we
		// always make progress
		_, size := utf8.DecodeRuneInString(line[offset:])
		toks = append(toks, Token{
			class:   DefaultClass,
			lexed:   line[offset : offset+size],
			state:   state,
			offset:  offset,
			linePos: linePos,
			lineNum: lineNum,
			line:    line,
		})
		offset += size
		linePos++
		zeroRun = 0
	}

	return toks, state
}
