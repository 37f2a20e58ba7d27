package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON encodes body as the response with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already sent; all that is left is to record it.
		slog.Error("encode response", "error", err)
	}
}
