package lex

import (
	"testing"

	"github.com/dekarrin/sheetlex/internal/grammar"
	"github.com/stretchr/testify/assert"
)

type expectToken struct {
	class  string
	lexeme string
}

func Test_Engine_TokenizeLine(t *testing.T) {
	testCases := []struct {
		name        string
		state       string
		input       string
		expect      []expectToken
		expectState string
	}{
		{
			name:  "document config",
			state: "start",
			input: `@tempo "120";`,
			expect: []expectToken{
				{"keyword document-config document-config-load", "@tempo "},
				{"string", `"120"`},
				{"eol", ";"},
			},
			expectState: "start",
		},
		{
			name:  "track and voice",
			state: "start",
			input: "[ { c'4 | Cmaj r2 } ]",
			expect: []expectToken{
				{"paren.lparen track-begin track", "["},
				{"text", " "},
				{"paren.lparen voice voice-begin", "{"},
				{"text", " "},
				{"constant.other event note note-c4", "c'4"},
				{"text", " "},
				{"eob", "|"},
				{"text", " "},
				{"constant.other event chord chord-Cmaj", "Cmaj"},
				{"text", " "},
				{"constant.other event rest r2", "r2"},
				{"text", " "},
				{"paren.rparen voice voice-end", "}"},
				{"text", " "},
				{"paren.rparen track track-end", "]"},
			},
			expectState: "start",
		},
		{
			name:  "comment with link",
			state: "start",
			input: "-- see http://example.com for notes",
			expect: []expectToken{
				{"comment begin", "--"},
				{"comment comment-content", " "},
				{"comment comment-content", "s"},
				{"comment comment-content", "e"},
				{"comment comment-content", "e"},
				{"comment comment-content", " "},
				{"comment comment-content link", "http://example.com"},
				{"comment comment-content", " "},
				{"comment comment-content", "f"},
				{"comment comment-content", "o"},
				{"comment comment-content", "r"},
				{"comment comment-content", " "},
				{"comment comment-content", "n"},
				{"comment comment-content", "o"},
				{"comment comment-content", "t"},
				{"comment comment-content", "e"},
				{"comment comment-content", "s"},
			},
			expectState: "start",
		},
		{
			name:  "cluster",
			state: "voice",
			input: "< c e g >4",
			expect: []expectToken{
				{"constant.other event note note-ceg4 cluster", "< c e g >4"},
			},
			expectState: "voice",
		},
		{
			name:  "longest note spelling wins",
			state: "voice",
			input: "cis",
			expect: []expectToken{
				{"constant.other event note note-cis", "cis"},
			},
			expectState: "voice",
		},
		{
			name:  "note with low octave and tuplet",
			state: "voice",
			input: "es,,16n5",
			expect: []expectToken{
				{"constant.other event note note-es16n5", "es,,16n5"},
			},
			expectState: "voice",
		},
		{
			name:  "quoted alias",
			state: "voice",
			input: `"snare hit"8`,
			expect: []expectToken{
				{"constant.other event note note-snarehit8", `"snare hit"8`},
			},
			expectState: "voice",
		},
		{
			name:  "dynamics",
			state: "voice",
			input: `\ff !p`,
			expect: []expectToken{
				{"meta expression", `\ff`},
				{"text", " "},
				{"meta expression", "!p"},
			},
			expectState: "voice",
		},
		{
			name:  "bare rest",
			state: "voice",
			input: "r",
			expect: []expectToken{
				{"constant.other event rest r", "r"},
			},
			expectState: "voice",
		},
		{
			name:  "document metaevent",
			state: "start",
			input: "title: My Song 1;",
			expect: []expectToken{
				{"keyword metaevent", "title:"},
				{"text", " "},
				{"variable.parameter metaargs", "My Song 1"},
				{"keyword metaevent-end", ";"},
			},
			expectState: "start",
		},
		{
			name:  "track metaevent",
			state: "track",
			input: "instrument: piano;",
			expect: []expectToken{
				{"keyword metaevent", "instrument:"},
				{"text", " "},
				{"variable.parameter metaargs", "piano"},
				{"keyword metaevent-end", ";"},
			},
			expectState: "track",
		},
		{
			name:  "voice metaevent",
			state: "voice",
			input: "/tempo: 120/",
			expect: []expectToken{
				{"keyword metaevent", "/tempo:"},
				{"text", " "},
				{"variable.parameter metaargs", "120"},
				{"keyword metaevent-end", "/"},
			},
			expectState: "voice",
		},
		{
			name:  "comment marker at end of line",
			state: "start",
			input: "[ --",
			expect: []expectToken{
				{"paren.lparen track-begin track", "["},
				{"text", " "},
				{"comment", "--"},
			},
			expectState: "track",
		},
		{
			name:  "comment inside voice",
			state: "voice",
			input: "c --x",
			expect: []expectToken{
				{"constant.other event note note-c", "c"},
				{"text", " "},
				{"comment begin", "--"},
				{"comment comment-content", "x"},
			},
			expectState: "voice",
		},
		{
			name:  "comment inside metaevent",
			state: "document.metaevent",
			input: "a--b",
			expect: []expectToken{
				{"variable.parameter metaargs", "a"},
				{"comment begin", "--"},
				{"comment comment-content", "b"},
			},
			expectState: "document.metaevent",
		},
		{
			name:  "unmatched characters fall back to text",
			state: "start",
			input: "é!",
			expect: []expectToken{
				{"text", "é"},
				{"text", "!"},
			},
			expectState: "start",
		},
		{
			name:        "empty line keeps state",
			state:       "voice",
			input:       "",
			expect:      nil,
			expectState: "voice",
		},
		{
			name:  "unknown state restarts at start",
			state: "no-such-state",
			input: "[",
			expect: []expectToken{
				{"paren.lparen track-begin track", "["},
			},
			expectState: "track",
		},
	}

	eng := New(nil)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			toks, endState := eng.TokenizeLine(tc.state, tc.input)

			actual := make([]expectToken, len(toks))
			for i := range toks {
				actual[i] = expectToken{toks[i].Class(), toks[i].Lexeme()}
			}
			if len(tc.expect) == 0 {
				assert.Empty(actual)
			} else {
				assert.Equal(tc.expect, actual)
			}
			assert.Equal(tc.expectState, endState)
		})
	}
}

func Test_Engine_commentResumesOnNextLine(t *testing.T) {
	assert := assert.New(t)
	eng := New(nil)

	toks, state := eng.TokenizeLine("start", "[ -- this [ is a comment")
	assert.Equal("track", state)
	if assert.NotEmpty(toks) {
		assert.Equal("comment comment-content", toks[len(toks)-1].Class())
	}

	toks, state = eng.TokenizeLineAt(state, "]", 2)
	assert.Equal("start", state)
	if assert.Len(toks, 1) {
		assert.Equal("paren.rparen track track-end", toks[0].Class())
		assert.True(toks[0].HasTag("track-end"))
		assert.Equal(2, toks[0].Line())
	}
}

func Test_Engine_positions(t *testing.T) {
	assert := assert.New(t)
	eng := New(nil)

	toks, _ := eng.TokenizeLineAt("voice", "é c", 7)

	if assert.Len(toks, 3) {
		assert.Equal(0, toks[0].Offset())
		assert.Equal(1, toks[0].LinePos())

		assert.Equal(2, toks[1].Offset())
		assert.Equal(2, toks[1].LinePos())

		assert.Equal(3, toks[2].Offset())
		assert.Equal(3, toks[2].LinePos())
		assert.Equal(7, toks[2].Line())
		assert.Equal("é c", toks[2].FullLine())
		assert.Equal("voice", toks[2].State())
		assert.Equal([]string{"constant.other", "event", "note", "note-c"}, toks[2].Tags())
	}
}

func Test_Engine_everyStateFinishesLine(t *testing.T) {
	g, err := grammar.Build()
	if !assert.NoError(t, err) {
		return
	}
	eng := New(g)

	for _, st := range g.States() {
		toks, _ := eng.TokenizeLine(st, "x y -- z")
		assert.NotEmpty(t, toks, "state %q", st)
	}
}

func Test_Merge(t *testing.T) {
	assert := assert.New(t)
	eng := New(nil)

	toks, _ := eng.TokenizeLine("start", "-- ab http://x.y c")
	merged := Merge(toks)

	actual := make([]expectToken, len(merged))
	for i := range merged {
		actual[i] = expectToken{merged[i].Class(), merged[i].Lexeme()}
	}
	assert.Equal([]expectToken{
		{"comment begin", "--"},
		{"comment comment-content", " ab "},
		{"comment comment-content link", "http://x.y"},
		{"comment comment-content", " c"},
	}, actual)

	assert.Nil(Merge(nil))
}
