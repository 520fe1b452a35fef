package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/itchan-dev/forum/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidate(t *testing.T) {
	type TestStruct struct {
		Field1 string `json:"field1" validate:"required"`
		Field2 int    `json:"field2"`
	}

	tests := []struct {
		name        string
		requestBody string
		expectedErr error
	}{
		{
			name:        "Valid JSON and Validation",
			requestBody: `{"field1": "value", "field2": 123}`,
		},
		{
			name:        "Optional field omitted",
			requestBody: `{"field1": "value"}`,
		},
		{
			name:        "Invalid JSON",
			requestBody: `{"field1": "value", "field2": 123`,
			expectedErr: errors.BadRequest("Body is invalid json"),
		},
		{
			name:        "Missing Required Field",
			requestBody: `{"field2": 123}`,
			expectedErr: errors.BadRequest("Required fields missing"),
		},
		{
			name:        "Empty Body",
			requestBody: "",
			expectedErr: errors.BadRequest("Body is invalid json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := io.NopCloser(strings.NewReader(tt.requestBody))
			err := DecodeValidate(body, &TestStruct{})
			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectedErr, err)
		})
	}
}

func TestWriteErrorAndStatusCode(t *testing.T) {
	t.Run("status error keeps its message", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorAndStatusCode(rr, errors.PermissionDenied("You can't split posts from this thread."))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "You can't split posts from this thread.", body["detail"])
	})

	t.Run("wrapped status error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorAndStatusCode(rr, fmt.Errorf("loading thread: %w", errors.NotFound("Thread not found")))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("plain error is hidden", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorAndStatusCode(rr, fmt.Errorf("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "connection refused")
		assert.Contains(t, rr.Body.String(), "Internal server error")
	})
}
