package main

import (
	"encoding/json"
	"net/http"
)

// JSON response helpers shared by every handler.

// respondWithError sends a {"error": msg} body with the given status code.
// The underlying error, when present, is logged but never exposed to the
// client.
func (cfg *apiConfig) respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	if err != nil {
		cfg.logger.Error(msg, "error", err)
	}
	type errorResponse struct {
		Error string `json:"error"`
	}
	cfg.respondWithJSON(w, code, errorResponse{
		Error: msg,
	})
}

// respondWithJSON encodes payload and writes it with the given status code.
// A payload that fails to encode turns into a bare 500, since by then no
// body can be trusted.
func (cfg *apiConfig) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(payload)
	if err != nil {
		cfg.logger.Error("could not encode response payload", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		cfg.logger.Error("could not write response", "error", err)
	}
}
