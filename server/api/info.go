package api

import (
	"net/http"

	"github.com/dekarrin/sheetlex/internal/version"
	"github.com/dekarrin/sheetlex/server/result"
)

// HTTPGetInfo returns a HandlerFunc that retrieves information on the API and
// server.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return api.Endpoint(api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.Sheetlex = version.Current
	resp.Version.Grammar = version.Grammar

	return result.OK(resp, "got API info")
}

// HTTPGetGrammar returns a HandlerFunc that gives every rule of every state of
// the grammar the server tokenizes with.
func (api API) HTTPGetGrammar() http.HandlerFunc {
	return api.Endpoint(api.epGetGrammar)
}

func (api API) epGetGrammar(req *http.Request) result.Result {
	g := api.Backend.Grammar()

	resp := GrammarModel{
		Start: g.Start(),
	}
	for _, name := range g.States() {
		st, _ := g.State(name)

		sm := StateModel{Name: name, Rules: make([]RuleModel, st.Len())}
		for i := range sm.Rules {
			r := st.Rule(i)
			sm.Rules[i] = RuleModel{
				Pattern: r.Pattern(),
				Class:   r.Classifier().String(),
				Next:    r.Next(),
			}
		}
		resp.States = append(resp.States, sm)
	}

	return result.OK(resp, "got grammar (%d states)", len(resp.States))
}
