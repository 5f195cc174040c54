package mw

import (
	"encoding/json"
	"net/http"
)

// reject writes the API error body {"message","error"} with the given status.
func reject(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": http.StatusText(status),
		"error":   reason,
	})
}
