package lex

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Stream is a lazily-read sequence of tokens over every line of some input.
// Lines are read and tokenized only as tokens are requested.
type Stream struct {
	eng *Engine
	r   *bufio.Reader

	// state at the start of the next unread line
	state string

	// tokens of the current line not yet returned
	pending []Token

	curLine int

	// set once all input has been read (or reading failed); after that and
	// once pending is drained, Next gives an EndOfText token
	done    bool
	readErr error
}

// Tokenize returns a Stream over all lines of input, starting in the start
// state of the grammar.
func (e *Engine) Tokenize(input io.Reader) *Stream {
	return e.TokenizeFrom(e.g.Start(), input)
}

// TokenizeFrom returns a Stream over all lines of input, starting in the
// given state.
func (e *Engine) TokenizeFrom(state string, input io.Reader) *Stream {
	return &Stream{
		eng:   e,
		r:     bufio.NewReader(input),
		state: state,
	}
}

// Next returns the next token in the stream and advances the stream by one
// token. If at the end of the stream, this will return a token whose Class()
// is EndOfText. If reading the input fails, it returns a token whose Class()
// is ErrorClass and whose lexeme is a message explaining the error, and every
// call after that gives EndOfText.
func (s *Stream) Next() Token {
	if !s.fill() {
		return s.terminalToken()
	}

	tok := s.pending[0]
	s.pending = s.pending[1:]
	return tok
}

// Peek returns the next token in the stream without advancing the stream.
func (s *Stream) Peek() Token {
	if !s.fill() {
		if s.readErr != nil {
			return s.makeErrorToken(s.readErr)
		}
		return s.makeEOTToken()
	}
	return s.pending[0]
}

// HasNext returns whether the stream has any additional tokens, other than
// the final EndOfText.
func (s *Stream) HasNext() bool {
	return s.fill() || s.readErr != nil
}

// State returns the state the stream is in after the last line read.
func (s *Stream) State() string {
	return s.state
}

// Err returns the error that stopped reading, if any. io.EOF is not reported.
func (s *Stream) Err() error {
	return s.readErr
}

func (s *Stream) terminalToken() Token {
	if s.readErr != nil {
		err := s.readErr
		s.readErr = nil
		return s.makeErrorToken(err)
	}
	return s.makeEOTToken()
}

// fill reads lines until there is at least one pending token or input is
// exhausted. It returns whether a token is pending.
func (s *Stream) fill() bool {
	for len(s.pending) == 0 && !s.done {
		line, err := s.r.ReadString('\n')
		if err != nil {
			// text read before a failure is still tokenized; the error token
			// follows it
			s.done = true
			if err != io.EOF {
				s.readErr = fmt.Errorf("I/O error: %w", err)
			}
			if line == "" {
				// a trailing newline ends the last line, it doesn't start a
				// new one
				break
			}
		}

		line = strings.TrimRight(line, "\r\n")
		s.curLine++
		s.pending, s.state = s.eng.TokenizeLineAt(s.state, line, s.curLine)
	}

	return len(s.pending) > 0
}

func (s *Stream) makeEOTToken() Token {
	return Token{class: EndOfText, state: s.state, lineNum: s.curLine}
}

func (s *Stream) makeErrorToken(err error) Token {
	return Token{class: ErrorClass, lexed: err.Error(), state: s.state, lineNum: s.curLine}
}
