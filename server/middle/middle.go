// Package middle contains middleware for use with the sheetlex server.
package middle

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Middleware is a function that takes a handler and returns a new handler which
// wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// RequestKey is a key in the context of a request populated by a
// RequestHandler.
type RequestKey int64

const (
	// RequestID holds the ID assigned to the request as a uuid.UUID.
	RequestID RequestKey = iota
)

// HeaderRequestID is the response header that gives the ID of the request.
const HeaderRequestID = "X-Request-ID"

// RequestHandler is middleware that assigns every request an ID and a logger
// that includes the ID in each message.
//
// The ID is added to the request context under RequestID and is sent back to
// the client in the X-Request-ID header. The logger can be retrieved from the
// request context with zerolog.Ctx.
type RequestHandler struct {
	log  zerolog.Logger
	next http.Handler
}

func (rh *RequestHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.NewRandom()
	if err != nil {
		// out of randomness is not a reason to refuse the request
		id = uuid.Nil
	}

	reqLog := rh.log.With().
		Str("request_id", id.String()).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Logger()

	ctx := req.Context()
	ctx = context.WithValue(ctx, RequestID, id)
	ctx = reqLog.WithContext(ctx)
	req = req.WithContext(ctx)

	w.Header().Set(HeaderRequestID, id.String())
	rh.next.ServeHTTP(w, req)
}

// Requests returns middleware that sets up the ID and logger of every request.
func Requests(log zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return &RequestHandler{
			log:  log,
			next: next,
		}
	}
}

// LimitBody returns middleware that makes reading more than maxBytes from any
// request body fail with an *http.MaxBytesError. If maxBytes is less than 1,
// bodies are not limited.
func LimitBody(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		if maxBytes < 1 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			req.Body = http.MaxBytesReader(w, req.Body, maxBytes)
			next.ServeHTTP(w, req)
		})
	}
}

// GetRequestID returns the ID assigned to the request, or uuid.Nil if it has
// none.
func GetRequestID(req *http.Request) uuid.UUID {
	id, ok := req.Context().Value(RequestID).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
