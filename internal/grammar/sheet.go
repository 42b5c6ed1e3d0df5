package grammar

import "github.com/dekarrin/sheetlex/internal/vocab"

// State names of the base Sheet grammar. Documents nest tracks, which nest
// voices.
const (
	StateDocumentConfig    = "documentConfig.String"
	StateEOL               = "eol"
	StateTrack             = "track"
	StateVoice             = "voice"
	StateVoiceMetaevent    = "voice.metaevent"
	StateTrackMetaevent    = "track.metaevent"
	StateDocumentMetaevent = "document.metaevent"
)

const metaArgsPattern = `(?:[a-zA-Z0-9.] *)+`

// sheetTable gives the base states, before comment handling is added. None of
// the patterns use capturing groups.
func sheetTable(v vocab.Fragments) table {
	note := "(?:" + v.Notes + ")(?:" + v.Octaves + ")?(?:" + v.Durations + ")?"
	cluster := "< *(?:(?:" + v.Notes + ") *(?:" + v.Octaves + ")? *)+ *>(?:" + v.Durations + ")?"

	return table{
		StartState: {
			{pattern: `@\w+ *`, token: Fixed("keyword document-config document-config-load"), next: StateDocumentConfig},
			{pattern: `\w+:`, token: Fixed("keyword metaevent"), next: StateDocumentMetaevent},
			{pattern: `\[`, token: Fixed("paren.lparen track-begin track"), next: StateTrack},
		},
		StateDocumentConfig: {
			{pattern: `".*?"`, token: Fixed("string"), next: StateEOL},
		},
		StateEOL: {
			{pattern: `; *$`, token: Fixed("eol"), next: StartState},
		},
		StateTrack: {
			{pattern: `\{`, token: Fixed("paren.lparen voice voice-begin"), next: StateVoice},
			{pattern: `\]`, token: Fixed("paren.rparen track track-end"), next: StartState},
			{pattern: `\w+:`, token: Fixed("keyword metaevent"), next: StateTrackMetaevent},
		},
		StateVoice: {
			{pattern: `/\w+:`, token: Fixed("keyword metaevent"), next: StateVoiceMetaevent},
			{pattern: v.Expressions, token: Fixed("meta expression")},
			{pattern: v.ExpressionsPlayedOnce, token: Fixed("meta expression")},
			{pattern: note, token: noteClassifier},
			{pattern: cluster, token: clusterClassifier},
			{pattern: `[A-Z][a-zA-Z0-9/+#~*!?-]*`, token: chordClassifier},
			{pattern: "r(?:" + v.Durations + ")?", token: restClassifier},
			{pattern: `\|`, token: Fixed("eob")},
			{pattern: `\}`, token: Fixed("paren.rparen voice voice-end"), next: StateTrack},
		},
		StateVoiceMetaevent: {
			{pattern: metaArgsPattern, token: Fixed("variable.parameter metaargs")},
			{pattern: `/`, token: Fixed("keyword metaevent-end"), next: StateVoice},
		},
		StateTrackMetaevent: {
			{pattern: metaArgsPattern, token: Fixed("variable.parameter metaargs")},
			{pattern: `;`, token: Fixed("keyword metaevent-end"), next: StateTrack},
		},
		StateDocumentMetaevent: {
			{pattern: metaArgsPattern, token: Fixed("variable.parameter metaargs")},
			{pattern: `;`, token: Fixed("keyword metaevent-end"), next: StartState},
		},
	}
}
