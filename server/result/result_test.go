package result

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Result_WriteResponse(t *testing.T) {
	testCases := []struct {
		name         string
		res          Result
		expectStatus int
		expectBody   string
		expectType   string
		expectHeader [2]string
	}{
		{
			name:         "ok json",
			res:          OK(map[string]int{"a": 1}),
			expectStatus: http.StatusOK,
			expectBody:   `{"a":1}`,
			expectType:   "application/json",
		},
		{
			name:         "no content has no body",
			res:          NoContent("deleted %s", "x"),
			expectStatus: http.StatusNoContent,
			expectBody:   "",
			expectType:   "application/json",
		},
		{
			name:         "not found",
			res:          NotFound(),
			expectStatus: http.StatusNotFound,
			expectBody:   `{"error":"The requested resource was not found","status":404}`,
			expectType:   "application/json",
		},
		{
			name:         "text error",
			res:          TextErr(http.StatusInternalServerError, "oops", "panic"),
			expectStatus: http.StatusInternalServerError,
			expectBody:   "oops",
			expectType:   "text/plain; charset=utf-8",
		},
		{
			name:         "extra header",
			res:          Created(1).WithHeader("Location", "/api/v1/sessions/1"),
			expectStatus: http.StatusCreated,
			expectBody:   "1",
			expectType:   "application/json",
			expectHeader: [2]string{"Location", "/api/v1/sessions/1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			w := httptest.NewRecorder()

			tc.res.WriteResponse(w)

			assert.Equal(tc.expectStatus, w.Code)
			assert.Equal(tc.expectBody, w.Body.String())
			assert.Equal(tc.expectType, w.Header().Get("Content-Type"))
			if tc.expectHeader[0] != "" {
				assert.Equal(tc.expectHeader[1], w.Header().Get(tc.expectHeader[0]))
			}
		})
	}
}

func Test_internalMessage(t *testing.T) {
	assert.Equal(t, "OK", OK(nil).InternalMsg)
	assert.Equal(t, "got 3 lines", OK(nil, "got %d lines", 3).InternalMsg)
	assert.Equal(t, "bad state", BadRequest("x", "bad state").InternalMsg)
}

func Test_Result_WithHeader_doesNotShare(t *testing.T) {
	base := OK(nil).WithHeader("A", "1")
	one := base.WithHeader("B", "2")
	two := base.WithHeader("C", "3")

	w1 := httptest.NewRecorder()
	one.WriteResponse(w1)
	w2 := httptest.NewRecorder()
	two.WriteResponse(w2)

	assert.Equal(t, "2", w1.Header().Get("B"))
	assert.Empty(t, w1.Header().Get("C"))
	assert.Equal(t, "3", w2.Header().Get("C"))
	assert.Empty(t, w2.Header().Get("B"))
}
