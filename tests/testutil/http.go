package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Header names the API reads the tenant and acting user from
const (
	TenantHeader = "X-Tenant-ID"
	ActorHeader  = "X-User-ID"
)

// APIRequest is a request against the versioned API.
// Body is marshalled to JSON unless it is nil or already a string.
type APIRequest struct {
	Method string
	Path   string
	Body   any
	Tenant string
	Actor  uuid.UUID
}

// Do sends req to h and returns the recorded response
func Do(t *testing.T, h http.Handler, req APIRequest) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch b := req.Body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		body = ToJSONReader(t, b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	r := httptest.NewRequest(method, req.Path, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.Tenant != "" {
		r.Header.Set(TenantHeader, req.Tenant)
	}
	if req.Actor != uuid.Nil {
		r.Header.Set(ActorHeader, req.Actor.String())
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// envelope mirrors the API response wrapper
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
		Step    string `json:"step"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

// DecodeData asserts a successful response and returns its data payload
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse JSON response: %s", w.Body.String())
	require.True(t, env.Success, "Expected success, got %s", w.Body.String())
	return env.Data
}

// AssertErrorResponse asserts the response carries the given status and error code
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, w.Code, "Unexpected status code: %s", w.Body.String())
	var env envelope[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse JSON response")
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code)
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
