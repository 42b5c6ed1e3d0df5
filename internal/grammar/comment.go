package grammar

// CommentStatePrefix is prepended to the name of a state to give the name of
// the state that scans a line comment started from it.
const CommentStatePrefix = "comment-"

const (
	commentMarker  = `--`
	commentURL     = `(?:https?|ftp)://[^\s]+`
	commentEOL     = `$`
	commentAnyChar = `.`
)

// CommentState gives the name of the comment state for the given state.
func CommentState(state string) string {
	return CommentStatePrefix + state
}

// withComments gives a new table in which every state of base starts with
// the two comment-entry rules, plus one comment state per base state. A line
// comment can begin anywhere and runs to the end of the line, after which the
// interrupted state resumes.
//
// Only the states of base are processed; the comment states it adds are not.
// base is not modified.
func withComments(base table) table {
	out := make(table, len(base)*2)

	for _, name := range base.stateNames() {
		comment := CommentState(name)

		rules := make([]ruleSpec, 0, len(base[name])+2)
		rules = append(rules,
			ruleSpec{pattern: commentMarker + commentEOL, token: Fixed("comment")},
			ruleSpec{pattern: commentMarker, token: Fixed("comment begin"), next: comment},
		)
		rules = append(rules, base[name]...)
		out[name] = rules

		out[comment] = []ruleSpec{
			{pattern: commentURL, token: Fixed("comment comment-content link")},
			{pattern: commentAnyChar, token: Fixed("comment comment-content")},
			{pattern: commentEOL, token: Fixed(""), next: name},
		}
	}

	return out
}
