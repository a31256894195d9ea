package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBody bounds request bodies read by DecodeJSON.
const maxBody = 1 << 20

func JSONResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func JSONError(w http.ResponseWriter, msg string, status int) {
	JSONResponse(w, map[string]string{"error": msg}, status)
}

// JSONRedirect reports an error together with the path the client should
// navigate to.
func JSONRedirect(w http.ResponseWriter, msg, path string, status int) {
	JSONResponse(w, map[string]string{"error": msg, "redirect": path}, status)
}

// DecodeJSON reads a JSON request body into v. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}
