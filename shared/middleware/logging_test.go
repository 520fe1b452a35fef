package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestId(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("assigns id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/categories", nil))

		assert.Equal(t, http.StatusTeapot, rr.Code)
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, rr.Header().Get(RequestIdHeader))
	})

	t.Run("keeps valid incoming id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIdHeader, id)
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, id, seen)
	})

	t.Run("replaces garbage id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIdHeader, "<script>")
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.NotEqual(t, "<script>", seen)
	})
}
