package grammar

import (
	"errors"
	"testing"

	"github.com/dekarrin/sheetlex/internal/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Sheet_stateClosure(t *testing.T) {
	assert := assert.New(t)
	g := Sheet()

	for _, name := range g.States() {
		st, ok := g.State(name)
		if !assert.True(ok) {
			continue
		}
		for i, r := range st.Rules() {
			if r.Next() != "" {
				assert.Truef(g.Has(r.Next()), "state %q rule %d goes to undefined state %q", name, i, r.Next())
			}
		}
	}
}

func Test_Sheet_states(t *testing.T) {
	assert := assert.New(t)
	g := Sheet()

	base := []string{
		StartState, StateDocumentConfig, StateEOL, StateTrack, StateVoice,
		StateVoiceMetaevent, StateTrackMetaevent, StateDocumentMetaevent,
	}

	assert.Equal(StartState, g.Start())
	assert.Len(g.States(), len(base)*2)
	for _, name := range base {
		assert.Truef(g.Has(name), "missing base state %q", name)
		assert.Truef(g.Has(CommentState(name)), "missing comment state for %q", name)
		assert.Falsef(g.Has(CommentState(CommentState(name))), "comment state for %q was overlaid again", name)
	}
}

func Test_Sheet_sameInstance(t *testing.T) {
	assert.Same(t, Sheet(), Sheet())
}

func Test_withComments(t *testing.T) {
	assert := assert.New(t)

	base := table{
		"a": {{pattern: `x`, token: Fixed("ex")}},
		"b": {{pattern: `y`, token: Fixed("why"), next: "a"}},
	}
	overlaid := withComments(base)

	assert.Len(overlaid, 4)

	// base must be left alone
	assert.Len(base["a"], 1)

	a := overlaid["a"]
	if assert.Len(a, 3) {
		assert.Equal(`--$`, a[0].pattern)
		assert.Equal("comment", a[0].token.String())
		assert.Equal("", a[0].next)

		assert.Equal(`--`, a[1].pattern)
		assert.Equal("comment begin", a[1].token.String())
		assert.Equal("comment-a", a[1].next)

		assert.Equal(`x`, a[2].pattern)
	}

	ca := overlaid["comment-a"]
	if assert.Len(ca, 3) {
		assert.Equal("comment comment-content link", ca[0].token.String())
		assert.Equal("comment comment-content", ca[1].token.String())
		assert.Equal(`$`, ca[2].pattern)
		assert.Equal("a", ca[2].next)
	}

	assert.Equal("b", overlaid["comment-b"][2].next)
}

func Test_compile_errors(t *testing.T) {
	testCases := []struct {
		name   string
		tbl    table
		start  string
		expect string
	}{
		{
			name:   "missing start",
			tbl:    table{"a": {{pattern: `x`, token: Fixed("x")}}},
			start:  "start",
			expect: `start state "start" is not defined`,
		},
		{
			name:   "undefined next",
			tbl:    table{"start": {{pattern: `x`, token: Fixed("x"), next: "nowhere"}}},
			start:  "start",
			expect: `state "start" rule 0: next state "nowhere" is not defined`,
		},
		{
			name:   "empty match without transition",
			tbl:    table{"start": {{pattern: `x`, token: Fixed("x")}, {pattern: `y*`, token: Fixed("y")}}},
			start:  "start",
			expect: `state "start" rule 1: pattern "y*" can match empty text but does not change state`,
		},
		{
			name:  "bad regex",
			tbl:   table{"start": {{pattern: `(`, token: Fixed("x")}}},
			start: "start",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := compile(tc.tbl, tc.start)

			if !assert.Error(err) {
				return
			}
			assert.True(errors.Is(err, ErrDefinition))

			var defErr *DefinitionError
			assert.True(errors.As(err, &defErr))
			if tc.expect != "" {
				assert.Equal(tc.expect, err.Error())
			}
		})
	}
}

func Test_compile_zeroWidthWithTransition(t *testing.T) {
	tbl := table{
		"start": {{pattern: `$`, token: Fixed(""), next: "other"}},
		"other": {{pattern: `z`, token: Fixed("z")}},
	}

	g, err := compile(tbl, "start")
	require.NoError(t, err)

	st, _ := g.State("start")
	n, ok := st.Rule(0).Match("", 0)
	assert.True(t, ok)
	assert.Equal(t, 0, n)
}

func Test_Rule_Match(t *testing.T) {
	testCases := []struct {
		name      string
		state     string
		rule      int
		line      string
		offset    int
		expectLen int
		expectOK  bool
	}{
		{name: "anchored at offset", state: StateTrack, rule: 2, line: "[ {", offset: 2, expectLen: 1, expectOK: true},
		{name: "no match later in line", state: StateTrack, rule: 2, line: "[ {", offset: 0, expectOK: false},
		{name: "offset past end", state: StateTrack, rule: 2, line: "{", offset: 5, expectOK: false},
		{name: "eol needs end", state: StateEOL, rule: 2, line: "; x", offset: 0, expectOK: false},
		{name: "eol with spaces", state: StateEOL, rule: 2, line: ";   ", offset: 0, expectLen: 4, expectOK: true},
	}

	g := Sheet()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st, ok := g.State(tc.state)
			require.True(t, ok)

			n, ok := st.Rule(tc.rule).Match(tc.line, tc.offset)

			assert.Equal(t, tc.expectOK, ok)
			if tc.expectOK {
				assert.Equal(t, tc.expectLen, n)
			}
		})
	}
}

func Test_Sheet_voicePrefixShadowing(t *testing.T) {
	g := Sheet()
	voice, ok := g.State(StateVoice)
	require.True(t, ok)

	// rule 5 is the note rule: two comment rules, metaevent, two dynamics
	noteRule := voice.Rule(5)
	require.Equal(t, "func:note", noteRule.Classifier().String())

	for _, note := range vocab.Notes() {
		n, ok := noteRule.Match(note, 0)
		if assert.Truef(t, ok, "note %q did not match", note) {
			assert.Equalf(t, len(note), n, "note %q was shadowed", note)
		}
	}
}

func Test_Classifier(t *testing.T) {
	assert := assert.New(t)

	fixed := Fixed("eob")
	assert.False(fixed.IsDerived())
	assert.Equal("eob", fixed.Classify(MatchContext{Text: "|"}))
	assert.Equal("eob", fixed.String())

	derived := Derived("upper", func(m MatchContext) string { return m.State + ":" + m.Text })
	assert.True(derived.IsDerived())
	assert.Equal("voice:c", derived.Classify(MatchContext{Text: "c", State: "voice"}))
	assert.Equal("func:upper", derived.String())

	var zero Classifier
	assert.Equal("", zero.Classify(MatchContext{Text: "x"}))
}
