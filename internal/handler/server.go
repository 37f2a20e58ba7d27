// Package handler implements the ops HTTP endpoints of the bot process:
// liveness and a view of the transit directory cache.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/pkordes/transit-bot/internal/directory"
)

// DirectoryStatser exposes cache statistics. Defining the interface here
// lets handler tests inject a stub instead of a live cache.
// *directory.Cache satisfies it.
type DirectoryStatser interface {
	Stats() []directory.ResourceStats
}

// Server holds the dependencies of the ops endpoints.
// Methods are in endpoint-specific files but all operate on this struct.
type Server struct {
	directory DirectoryStatser
}

// NewServer constructs the Server with all its dependencies.
func NewServer(dir DirectoryStatser) *Server {
	return &Server{directory: dir}
}

// Routes returns the router for the ops endpoints. main.go mounts it behind
// the shared middleware stack.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/debug/directory", s.GetDirectory)
	return r
}
