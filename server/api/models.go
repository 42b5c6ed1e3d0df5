package api

import (
	"time"

	"github.com/dekarrin/sheetlex/internal/lex"
	"github.com/dekarrin/sheetlex/internal/render"
	"github.com/dekarrin/sheetlex/server/dao"
)

// note that these are *not* the DAO models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received from
// and sent to the client.

type InfoModel struct {
	Version struct {
		Server   string `json:"server"`
		Sheetlex string `json:"sheetlex"`
		Grammar  string `json:"grammar"`
	} `json:"version"`
}

type RuleModel struct {
	Pattern string `json:"pattern"`
	Class   string `json:"class"`
	Next    string `json:"next,omitempty"`
}

type StateModel struct {
	Name  string      `json:"name"`
	Rules []RuleModel `json:"rules"`
}

type GrammarModel struct {
	Start  string       `json:"start"`
	States []StateModel `json:"states"`
}

type HighlightRequest struct {
	State string   `json:"state"`
	Lines []string `json:"lines"`
}

type HighlightResponse struct {
	Lines []render.LineModel `json:"lines"`
}

// StreamTokenModel is a token from a whole text rather than from a single
// line, so it carries its line number.
type StreamTokenModel struct {
	Line int `json:"line"`
	render.TokenModel
}

type TokensResponse struct {
	Tokens   []StreamTokenModel `json:"tokens"`
	EndState string             `json:"end_state"`
}

type SessionCreateRequest struct {
	Text string `json:"text"`
}

type SessionEditRequest struct {
	Start *int     `json:"start"`
	End   *int     `json:"end"`
	Lines []string `json:"lines"`
}

type SessionModel struct {
	URI      string             `json:"uri"`
	ID       string             `json:"id"`
	Grammar  string             `json:"grammar"`
	Created  string             `json:"created"`
	Modified string             `json:"modified"`
	Length   int                `json:"length"`
	Text     string             `json:"text,omitempty"`
	Lines    []render.LineModel `json:"lines,omitempty"`
}

type SessionEditModel struct {
	URI    string `json:"uri"`
	Length int    `json:"length"`

	// From and To are the 0-indexed range [From, To) of lines whose tokens
	// may have changed. Changed holds those lines.
	From    int                `json:"from"`
	To      int                `json:"to"`
	Changed []render.LineModel `json:"changed"`
}

func sessionURI(s dao.Session) string {
	return PathPrefix + "/sessions/" + s.ID.String()
}

// newSessionModel converts a session to its API form. Text and every line
// are only included if full is set.
func newSessionModel(s dao.Session, full bool) SessionModel {
	m := SessionModel{
		URI:      sessionURI(s),
		ID:       s.ID.String(),
		Grammar:  s.Grammar,
		Created:  s.Created.Format(time.RFC3339),
		Modified: s.Modified.Format(time.RFC3339),
		Length:   s.Doc.Len(),
	}
	if full {
		m.Text = s.Doc.Text()
		m.Lines = docLines(s.Doc, 0, s.Doc.Len())
	}
	return m
}

// docLines gives the 0-indexed lines [from, to) of doc.
func docLines(doc *lex.Document, from, to int) []render.LineModel {
	lines := make([]render.LineModel, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, render.NewLineModel(i+1, doc.Tokens(i), doc.EndState(i)))
	}
	return lines
}
