package grammar

import "strings"

// EventClass is the leading tags of every musical event token.
const EventClass = "constant.other event"

// Normalize removes every character from s that is not an ASCII letter or
// digit, so that any matched spelling can be used as a class tag suffix.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9') {
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

// NoteToken gives the class of a note, e.g. "c'4" gives
// "constant.other event note note-c4".
func NoteToken(text string) string {
	return EventClass + " note note-" + Normalize(text)
}

// ChordToken gives the class of a chord symbol.
func ChordToken(text string) string {
	return EventClass + " chord chord-" + Normalize(text)
}

// ClusterToken gives the class of an angle-bracketed note cluster.
func ClusterToken(text string) string {
	return NoteToken(text) + " cluster"
}

// RestToken gives the class of a rest. The matched text (possibly empty) is
// used as the last tag as-is.
func RestToken(text string) string {
	return EventClass + " rest " + text
}

var (
	noteClassifier    = Derived("note", func(m MatchContext) string { return NoteToken(m.Text) })
	chordClassifier   = Derived("chord", func(m MatchContext) string { return ChordToken(m.Text) })
	clusterClassifier = Derived("cluster", func(m MatchContext) string { return ClusterToken(m.Text) })
	restClassifier    = Derived("rest", func(m MatchContext) string { return RestToken(m.Text) })
)
