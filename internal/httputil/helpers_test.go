package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	JSONResponse(w, map[string]string{"key": "value"}, http.StatusCreated)

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, w.Code)
	var got map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "value", got["key"])
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, "bad request", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var got map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "bad request", got["error"])
}

func TestJSONRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	JSONRedirect(w, "forbidden", "/", http.StatusForbidden)

	var got map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "forbidden", got["error"])
	assert.Equal(t, "/", got["redirect"])
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"dog"}`))
	require.NoError(t, DecodeJSON(r, &body))
	assert.Equal(t, "dog", body.Name)

	for _, raw := range []string{``, `{invalid`, `{"other":1}`} {
		r = httptest.NewRequest("POST", "/", strings.NewReader(raw))
		assert.Error(t, DecodeJSON(r, &body), raw)
	}
}
