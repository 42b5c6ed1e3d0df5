package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dekarrin/sheetlex/server/result"
	"github.com/dekarrin/sheetlex/server/serr"
	"github.com/stretchr/testify/assert"
)

func Test_errorResult(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectStatus int
	}{
		{name: "not found", err: serr.ErrNotFound, expectStatus: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("get: %w", serr.ErrNotFound), expectStatus: http.StatusNotFound},
		{name: "too large", err: serr.New("100 lines", serr.ErrTooLarge), expectStatus: http.StatusRequestEntityTooLarge},
		{name: "bad argument", err: serr.New("bad state", serr.ErrBadArgument), expectStatus: http.StatusBadRequest},
		{name: "bad body", err: serr.New("", serr.ErrBodyUnmarshal), expectStatus: http.StatusBadRequest},
		{name: "DB", err: serr.WrapDB("could not save", errors.New("disk full")), expectStatus: http.StatusInternalServerError},
		{name: "other", err: errors.New("100% broken"), expectStatus: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := errorResult(tc.err)

			assert.Equal(t, tc.expectStatus, r.Status)
			assert.True(t, r.IsErr)
		})
	}
}

func Test_parseJSON(t *testing.T) {
	type body struct {
		Text string `json:"text"`
	}

	testCases := []struct {
		name        string
		contentType string
		body        string
		expect      body
		expectErrIs error
	}{
		{name: "valid", contentType: "application/json", body: `{"text": "[ c ]"}`, expect: body{Text: "[ c ]"}},
		{name: "with charset", contentType: "application/json; charset=utf-8", body: `{"text": "c"}`, expect: body{Text: "c"}},
		{name: "not JSON content", contentType: "text/plain", body: `{"text": "c"}`, expectErrIs: serr.ErrBadArgument},
		{name: "no content type", body: `{"text": "c"}`, expectErrIs: serr.ErrBadArgument},
		{name: "malformed", contentType: "application/json", body: `{"text": `, expectErrIs: serr.ErrBodyUnmarshal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}

			var actual body
			err := parseJSON(req, &actual)
			if tc.expectErrIs != nil {
				assert.ErrorIs(t, err, tc.expectErrIs)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func Test_Endpoint_panicGives500(t *testing.T) {
	a := API{}
	h := a.Endpoint(func(req *http.Request) result.Result {
		panic("oh no")
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An internal server error occurred")
	assert.NotContains(t, w.Body.String(), "oh no")
}

func Test_Endpoint_unpopulatedResult(t *testing.T) {
	a := API{}
	h := a.Endpoint(func(req *http.Request) result.Result {
		return result.Result{}
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
