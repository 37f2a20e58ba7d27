package handler

import (
	"net/http"

	"github.com/pkordes/transit-bot/internal/directory"
)

type directoryResponse struct {
	Resources []directory.ResourceStats `json:"resources"`
}

// GetDirectory handles GET /debug/directory.
// It reports, per resource, whether it is cached and fresh, its size, expiry
// and hit/miss/failure counters.
func (s *Server) GetDirectory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, directoryResponse{Resources: s.directory.Stats()})
}
