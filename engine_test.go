package sheetlex

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dekarrin/sheetlex/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Engine_Highlight(t *testing.T) {
	assert := assert.New(t)
	var out bytes.Buffer

	eng, err := New(strings.NewReader(""), &out, Options{Format: render.FormatJSON})
	require.NoError(t, err)
	defer eng.Close()

	err = eng.Highlight(strings.NewReader("[ {\n\nc -- note\n}\n]\n"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)

	var ends []string
	for i, l := range lines {
		var lm render.LineModel
		require.NoError(t, json.Unmarshal([]byte(l), &lm))
		assert.Equal(i+1, lm.Line)
		ends = append(ends, lm.EndState)
	}
	assert.Equal([]string{"voice", "voice", "voice", "track", "start"}, ends)
	assert.Equal("start", eng.State())
}

func Test_Engine_Highlight_startState(t *testing.T) {
	var out bytes.Buffer

	eng, err := New(strings.NewReader(""), &out, Options{Format: render.FormatHTML, StartState: "voice"})
	require.NoError(t, err)
	defer eng.Close()

	err = eng.Highlight(strings.NewReader("c"))
	require.NoError(t, err)

	assert.Contains(t, out.String(), `<span class="sheet_constant sheet_other sheet_event sheet_note sheet_note-c">c</span>`)
	assert.True(t, strings.HasSuffix(out.String(), "</pre>\n"))
}

func Test_Engine_HighlightFile(t *testing.T) {
	assert := assert.New(t)
	var out bytes.Buffer

	path := filepath.Join(t.TempDir(), "song.sheet")
	require.NoError(t, os.WriteFile(path, []byte("@title \"x\";\n[ {\nc\n} ]\n"), 0660))

	eng, err := New(strings.NewReader(""), &out, Options{Format: render.FormatJSON})
	require.NoError(t, err)
	defer eng.Close()

	require.NoError(t, eng.HighlightFile(path))
	assert.Equal(4, strings.Count(out.String(), "\n"))
	assert.Equal("start", eng.State())

	err = eng.HighlightFile(filepath.Join(t.TempDir(), "missing.sheet"))
	assert.Error(err)
}

func Test_New_unknownState(t *testing.T) {
	_, err := New(strings.NewReader(""), &bytes.Buffer{}, Options{StartState: "nowhere"})
	assert.Error(t, err)
}

func Test_New_unknownFormat(t *testing.T) {
	_, err := New(strings.NewReader(""), &bytes.Buffer{}, Options{Format: "pdf"})
	assert.Error(t, err)
}

func Test_Engine_RunUntilQuit(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectContain []string
		expectAbsent  []string
		expectState   string
	}{
		{
			name:          "state carries between lines",
			input:         "[ {\n:state\nc\n",
			expectContain: []string{"voice\n", `"end_state":"voice"`, "Goodbye\n"},
			expectState:   "voice",
		},
		{
			name:          "quit stops reading",
			input:         "[\n:quit\n{\n",
			expectContain: []string{"Goodbye\n"},
			expectAbsent:  []string{`"end_state":"voice"`},
			expectState:   "track",
		},
		{
			name:          "set state",
			input:         ":state voice\nr4\n",
			expectContain: []string{`"class":"constant.other event rest r4"`},
			expectState:   "voice",
		},
		{
			name:          "bad state",
			input:         ":state nowhere\n",
			expectContain: []string{`No state named "nowhere"`},
			expectState:   "start",
		},
		{
			name:          "reset",
			input:         "[ {\n:reset\n",
			expectContain: []string{"State reset to start"},
			expectState:   "start",
		},
		{
			name:          "unknown command",
			input:         ":dance\n",
			expectContain: []string{`Unknown command "dance"`},
			expectState:   "start",
		},
		{
			name:          "help",
			input:         ":help\n",
			expectContain: []string{":grammar", ":reset"},
			expectState:   "start",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			var out bytes.Buffer

			eng, err := New(strings.NewReader(tc.input), &out, Options{Format: render.FormatJSON, ForceDirect: true})
			require.NoError(t, err)

			err = eng.RunUntilQuit()
			require.NoError(t, err)
			require.NoError(t, eng.Close())

			for _, s := range tc.expectContain {
				assert.Contains(out.String(), s)
			}
			for _, s := range tc.expectAbsent {
				assert.NotContains(out.String(), s)
			}
			assert.Equal(tc.expectState, eng.State())
		})
	}
}
