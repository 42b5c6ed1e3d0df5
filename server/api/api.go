// Package api provides HTTP API endpoints for the sheetlex server.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dekarrin/sheetlex/server/middle"
	"github.com/dekarrin/sheetlex/server/result"
	"github.com/dekarrin/sheetlex/server/serr"
	"github.com/dekarrin/sheetlex/server/sheets"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// PathPrefix is the prefix of all paths in the API. Routers should mount
	// a sub-router that routes all requests to the API at this path.
	PathPrefix = "/api/v1"
)

// requireIDParam gets the ID of the main entity being referenced in the URI and
// returns it. It panics if the key is not there or is not parsable.
func requireIDParam(r *http.Request) uuid.UUID {
	id, err := getURLParam(r, "id", uuid.Parse)
	if err != nil {
		panic(err.Error())
	}
	return id
}

func getURLParam[E any](r *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(r, key)
	if valStr == "" {
		// either it does not exist or it is nil; treat both as the same and
		// return an error
		return val, fmt.Errorf("parameter does not exist")
	}

	val, err = parse(valStr)
	if err != nil {
		return val, serr.New("", serr.ErrBadArgument)
	}
	return val, nil
}

// API holds parameters for endpoints needed to run and a service layer that
// will perform most of the actual logic. To use API, create one and then
// assign the result of its HTTP* methods as handlers to a router or some other
// kind of server mux.
//
// This is exclusively an API for serving external requests. For direct
// programmatic access into the backend of a sheetlex server via Go code, see
// [sheets.Service].
type API struct {
	// Backend is the service that the API calls to perform the requested
	// actions.
	Backend *sheets.Service

	// ErrorDelay is the amount of time that a request will pause before
	// responding with an HTTP-500, to deprioritize clients that keep causing
	// them.
	ErrorDelay time.Duration
}

// v must be a pointer to a type. Will return error such that
// errors.Is(err, serr.ErrBodyUnmarshal) returns true if it is problem decoding
// the JSON itself, and errors.Is(err, serr.ErrTooLarge) if the body was
// larger than allowed.
func parseJSON(req *http.Request, v interface{}) error {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return serr.New("request content-type is not application/json", serr.ErrBadArgument)
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return serr.New(fmt.Sprintf("request body is larger than %d bytes", tooLarge.Limit), serr.ErrTooLarge)
		}
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	err = json.Unmarshal(bodyData, v)
	if err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}

	return nil
}

// errorResult gives the Result for an error returned from the backend.
func errorResult(err error) result.Result {
	switch {
	case errors.Is(err, serr.ErrNotFound):
		return result.NotFound("%s", err.Error())
	case errors.Is(err, serr.ErrTooLarge):
		return result.TooLarge(err.Error(), "%s", err.Error())
	case errors.Is(err, serr.ErrBadArgument), errors.Is(err, serr.ErrBodyUnmarshal):
		return result.BadRequest(err.Error(), "%s", err.Error())
	default:
		return result.InternalServerError("%s", err.Error())
	}
}

type EndpointFunc func(req *http.Request) result.Result

// Endpoint wraps an EndpointFunc as an http.HandlerFunc that writes and logs
// its Result.
func (api API) Endpoint(ep EndpointFunc) http.HandlerFunc {
	return httpEndpoint(api.ErrorDelay, ep)
}

func httpEndpoint(errorDelay time.Duration, ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)
		r := ep(req)

		// if this hasn't been properly created, output error directly and do not
		// try to read properties
		if r.Status == 0 {
			logHttpResponse(zerolog.ErrorLevel, req, http.StatusInternalServerError, "endpoint result was never populated")
			http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
			return
		}

		// pre-call PrepareMarshaledResponse bc if it fails in call to
		// WriteResponse, it will panic.
		if err := r.PrepareMarshaledResponse(); err != nil {
			r = result.InternalServerError("could not marshal JSON response: %s", err.Error())
		}

		if r.IsErr {
			logHttpResponse(zerolog.ErrorLevel, req, r.Status, r.InternalMsg)
		} else {
			logHttpResponse(zerolog.InfoLevel, req, r.Status, r.InternalMsg)
		}

		if r.Status == http.StatusInternalServerError {
			time.Sleep(errorDelay)
		}

		r.WriteResponse(w)
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) (panicRecovered bool) {
	if panicErr := recover(); panicErr != nil {
		r := result.TextErr(
			http.StatusInternalServerError,
			fmt.Sprintf("An internal server error occurred (request %s)", middle.GetRequestID(req)),
			fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack())),
		)
		logHttpResponse(zerolog.ErrorLevel, req, r.Status, r.InternalMsg)
		r.WriteResponse(w)
		return true
	}
	return false
}

func logHttpResponse(level zerolog.Level, req *http.Request, respStatus int, msg string) {
	zerolog.Ctx(req.Context()).WithLevel(level).
		Str("remote", req.RemoteAddr).
		Int("status", respStatus).
		Msg(msg)
}

// WriteNotFound writes an HTTP-404 for any request that matches no route.
func (api API) WriteNotFound(w http.ResponseWriter, req *http.Request) {
	r := result.NotFound()
	logHttpResponse(zerolog.ErrorLevel, req, r.Status, r.InternalMsg)
	r.WriteResponse(w)
}

// WriteMethodNotAllowed writes an HTTP-405 for any request whose path exists
// but not for its method.
func (api API) WriteMethodNotAllowed(w http.ResponseWriter, req *http.Request) {
	r := result.MethodNotAllowed(req)
	logHttpResponse(zerolog.ErrorLevel, req, r.Status, r.InternalMsg)
	r.WriteResponse(w)
}
