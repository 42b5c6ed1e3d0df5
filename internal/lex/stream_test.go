package lex

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Stream(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expect      []expectToken
		expectLines []int
		expectState string
	}{
		{
			name:  "state carries across lines",
			input: "[\n{ c }\n]\n",
			expect: []expectToken{
				{"paren.lparen track-begin track", "["},
				{"paren.lparen voice voice-begin", "{"},
				{"text", " "},
				{"constant.other event note note-c", "c"},
				{"text", " "},
				{"paren.rparen voice voice-end", "}"},
				{"paren.rparen track track-end", "]"},
			},
			expectLines: []int{1, 2, 2, 2, 2, 2, 3},
			expectState: "start",
		},
		{
			name:  "blank lines and CRLF",
			input: "[\r\n\r\n]",
			expect: []expectToken{
				{"paren.lparen track-begin track", "["},
				{"paren.rparen track track-end", "]"},
			},
			expectLines: []int{1, 3},
			expectState: "start",
		},
		{
			name:  "comment does not span lines",
			input: "[ -- {\n{",
			expect: []expectToken{
				{"paren.lparen track-begin track", "["},
				{"text", " "},
				{"comment begin", "--"},
				{"comment comment-content", " "},
				{"comment comment-content", "{"},
				{"paren.lparen voice voice-begin", "{"},
			},
			expectLines: []int{1, 1, 1, 1, 1, 2},
			expectState: "voice",
		},
		{
			name:        "empty input",
			input:       "",
			expectState: "start",
		},
	}

	eng := New(nil)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			stream := eng.Tokenize(strings.NewReader(tc.input))

			var actual []expectToken
			var lines []int
			for stream.HasNext() {
				peeked := stream.Peek()
				tok := stream.Next()
				assert.Equal(peeked, tok, "peek did not match next")

				actual = append(actual, expectToken{tok.Class(), tok.Lexeme()})
				lines = append(lines, tok.Line())
			}

			assert.Equal(tc.expect, actual)
			assert.Equal(tc.expectLines, lines)
			assert.Equal(tc.expectState, stream.State())
			assert.Equal(EndOfText, stream.Next().Class())
			assert.NoError(stream.Err())
		})
	}
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func Test_Stream_readError(t *testing.T) {
	assert := assert.New(t)
	eng := New(nil)

	stream := eng.Tokenize(failingReader{})

	require.True(t, stream.HasNext())
	assert.Error(stream.Err())

	tok := stream.Next()
	assert.Equal(ErrorClass, tok.Class())
	assert.Contains(tok.Lexeme(), "disk on fire")

	assert.False(stream.HasNext())
	assert.Equal(EndOfText, stream.Next().Class())
}

func Test_Stream_readErrorAfterPartialLine(t *testing.T) {
	assert := assert.New(t)
	eng := New(nil)

	input := io.MultiReader(strings.NewReader("[ {\nc"), iotest.ErrReader(errors.New("disk on fire")))
	stream := eng.Tokenize(input)

	var actual []expectToken
	for stream.HasNext() {
		tok := stream.Next()
		actual = append(actual, expectToken{tok.Class(), tok.Lexeme()})
	}

	require.Len(t, actual, 5)
	assert.Equal([]expectToken{
		{"paren.lparen track-begin track", "["},
		{"text", " "},
		{"paren.lparen voice voice-begin", "{"},
		{"constant.other event note note-c", "c"},
	}, actual[:4])
	assert.Equal(ErrorClass, actual[4].class)
	assert.Contains(actual[4].lexeme, "disk on fire")
	assert.Equal("voice", stream.State())
	assert.Equal(EndOfText, stream.Next().Class())
}

func Test_Stream_TokenizeFrom(t *testing.T) {
	assert := assert.New(t)
	eng := New(nil)

	stream := eng.TokenizeFrom("voice", strings.NewReader("r4."))

	tok := stream.Next()
	assert.Equal("constant.other event rest r4.", tok.Class())
	assert.Equal("voice", stream.State())
}
