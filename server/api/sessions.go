package api

import (
	"net/http"

	"github.com/dekarrin/sheetlex/server/result"
)

// HTTPCreateSession returns a HandlerFunc that creates a new editing session
// from the text in the request.
func (api API) HTTPCreateSession() http.HandlerFunc {
	return api.Endpoint(api.epCreateSession)
}

func (api API) epCreateSession(req *http.Request) result.Result {
	var createReq SessionCreateRequest
	err := parseJSON(req, &createReq)
	if err != nil {
		return errorResult(err)
	}

	s, err := api.Backend.CreateSession(req.Context(), createReq.Text)
	if err != nil {
		return errorResult(err)
	}

	resp := newSessionModel(s, true)
	return result.Created(resp, "created session %s (%d lines)", resp.ID, resp.Length).
		WithHeader("Location", resp.URI)
}

// HTTPGetAllSessions returns a HandlerFunc that lists every session without
// their content.
func (api API) HTTPGetAllSessions() http.HandlerFunc {
	return api.Endpoint(api.epGetAllSessions)
}

func (api API) epGetAllSessions(req *http.Request) result.Result {
	all, err := api.Backend.GetAllSessions(req.Context())
	if err != nil {
		return errorResult(err)
	}

	resp := make([]SessionModel, len(all))
	for i := range all {
		resp[i] = newSessionModel(all[i], false)
	}

	return result.OK(resp, "got all sessions")
}

// HTTPGetSession returns a HandlerFunc that gives a session with the tokens of
// every line.
func (api API) HTTPGetSession() http.HandlerFunc {
	return api.Endpoint(api.epGetSession)
}

func (api API) epGetSession(req *http.Request) result.Result {
	id := requireIDParam(req)

	s, err := api.Backend.GetSession(req.Context(), id.String())
	if err != nil {
		return errorResult(err)
	}

	return result.OK(newSessionModel(s, true), "got session %s", id)
}

// HTTPEditSession returns a HandlerFunc that replaces a range of lines of a
// session and gives back only the lines whose tokens may have changed.
func (api API) HTTPEditSession() http.HandlerFunc {
	return api.Endpoint(api.epEditSession)
}

func (api API) epEditSession(req *http.Request) result.Result {
	id := requireIDParam(req)

	var editReq SessionEditRequest
	err := parseJSON(req, &editReq)
	if err != nil {
		return errorResult(err)
	}
	if editReq.Start == nil {
		return result.BadRequest("start: property is empty or missing from request", "empty start")
	}
	if editReq.End == nil {
		return result.BadRequest("end: property is empty or missing from request", "empty end")
	}

	s, from, to, err := api.Backend.EditSession(req.Context(), id.String(), *editReq.Start, *editReq.End, editReq.Lines)
	if err != nil {
		return errorResult(err)
	}

	resp := SessionEditModel{
		URI:     sessionURI(s),
		Length:  s.Doc.Len(),
		From:    from,
		To:      to,
		Changed: docLines(s.Doc, from, to),
	}

	return result.OK(resp, "edited session %s: lines [%d, %d) retokenized", id, from, to)
}

// HTTPDeleteSession returns a HandlerFunc that deletes a session.
func (api API) HTTPDeleteSession() http.HandlerFunc {
	return api.Endpoint(api.epDeleteSession)
}

func (api API) epDeleteSession(req *http.Request) result.Result {
	id := requireIDParam(req)

	_, err := api.Backend.DeleteSession(req.Context(), id.String())
	if err != nil {
		return errorResult(err)
	}

	return result.NoContent("deleted session %s", id)
}
