package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// errorEnvelope is the {success:false, error} shape of the /analyze-* routes.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// apiError is the {error, message} shape of the /api/* routes.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondRaw writes an upstream JSON body through unchanged.
func respondRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// decodeBody treats an empty body as an empty object so that missing fields
// surface through the handlers' own presence checks.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
