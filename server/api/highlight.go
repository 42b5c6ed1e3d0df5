package api

import (
	"mime"
	"net/http"

	"github.com/dekarrin/sheetlex/internal/render"
	"github.com/dekarrin/sheetlex/server/result"
)

// HTTPHighlight returns a HandlerFunc that tokenizes the lines in the request,
// carrying the state from each line to the next.
func (api API) HTTPHighlight() http.HandlerFunc {
	return api.Endpoint(api.epHighlight)
}

// POST /highlight: tokenize a list of lines.
func (api API) epHighlight(req *http.Request) result.Result {
	var hlReq HighlightRequest
	err := parseJSON(req, &hlReq)
	if err != nil {
		return errorResult(err)
	}

	lines, err := api.Backend.Highlight(req.Context(), hlReq.State, hlReq.Lines)
	if err != nil {
		return errorResult(err)
	}

	if lines == nil {
		lines = []render.LineModel{}
	}

	return result.OK(HighlightResponse{Lines: lines}, "highlighted %d lines", len(lines))
}

// HTTPTokenize returns a HandlerFunc that tokenizes the plain-text body of the
// request. The optional "state" query parameter gives the state the first line
// starts in.
func (api API) HTTPTokenize() http.HandlerFunc {
	return api.Endpoint(api.epTokenize)
}

// POST /tokens: tokenize a whole text.
func (api API) epTokenize(req *http.Request) result.Result {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "text/plain" {
		return result.UnsupportedMediaType("request content-type is not text/plain")
	}

	toks, end, err := api.Backend.Tokenize(req.Context(), req.URL.Query().Get("state"), req.Body)
	if err != nil {
		return errorResult(err)
	}

	resp := TokensResponse{
		Tokens:   make([]StreamTokenModel, len(toks)),
		EndState: end,
	}
	for i, tok := range toks {
		resp.Tokens[i] = StreamTokenModel{
			Line: tok.Line(),
			TokenModel: render.TokenModel{
				Class:  tok.Class(),
				Text:   tok.Lexeme(),
				Offset: tok.Offset(),
				Column: tok.LinePos(),
				State:  tok.State(),
			},
		}
	}

	return result.OK(resp, "tokenized text into %d tokens", len(toks))
}
