package server

import (
	"net/http"
	"strings"

	"github.com/dekarrin/sheetlex/server/api"
	"github.com/dekarrin/sheetlex/server/middle"
	"github.com/dekarrin/sheetlex/server/result"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var (
	paramTypePats = map[string]string{
		"uuid": "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	}
)

// p is a quick parameter in a URI, made very small to ease readability in route
// listings.
func p(nameType string) string {
	var name string
	var pat string

	parts := strings.SplitN(nameType, ":", 2)
	name = parts[0]
	if len(parts) == 2 {
		// we have a type, if it's a name in the paramTypePats map use that else
		// treat it as a normal pattern
		pat = parts[1]

		if translatedPat, ok := paramTypePats[parts[1]]; ok {
			pat = translatedPat
		}
	}

	if pat == "" {
		return "{" + name + "}"
	}
	return "{" + name + ":" + pat + "}"
}

func newRouter(a api.API, log zerolog.Logger, maxBodyBytes int64) chi.Router {
	r := chi.NewRouter()

	r.Use(middle.Requests(log))
	r.Use(middle.LimitBody(maxBodyBytes))

	r.Mount(api.PathPrefix, newAPIRouter(a))

	r.NotFound(a.WriteNotFound)
	r.MethodNotAllowed(a.WriteMethodNotAllowed)

	return r
}

func newAPIRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Get("/info", a.HTTPGetInfo())
	r.HandleFunc("/info/", RedirectNoTrailingSlash)

	r.Get("/grammar", a.HTTPGetGrammar())
	r.HandleFunc("/grammar/", RedirectNoTrailingSlash)

	r.Post("/highlight", a.HTTPHighlight())
	r.Post("/tokens", a.HTTPTokenize())

	r.Mount("/sessions", newSessionsRouter(a))

	r.NotFound(a.WriteNotFound)
	r.MethodNotAllowed(a.WriteMethodNotAllowed)

	return r
}

func newSessionsRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Get("/", a.HTTPGetAllSessions())
	r.Post("/", a.HTTPCreateSession())

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", a.HTTPGetSession())
		r.Patch("/", a.HTTPEditSession())
		r.Delete("/", a.HTTPDeleteSession())
	})

	r.NotFound(a.WriteNotFound)
	r.MethodNotAllowed(a.WriteMethodNotAllowed)

	return r
}

// RedirectNoTrailingSlash is an http.HandlerFunc that redirects to the same URL as the
// request but with no trailing slash.
func RedirectNoTrailingSlash(w http.ResponseWriter, req *http.Request) {
	redirPath := strings.TrimRight(req.URL.Path, "/")
	result.Redirection(redirPath).WriteResponse(w)
}
