package server

import (
	"context"
	"net/http"
	"time"

	"simulscore/internal/instlog"
	"simulscore/internal/runs"
	"simulscore/internal/score"
)

// Server encapsulates the HTTP server of the evaluation API, providing
// controlled startup and shutdown.
type Server struct {
	// server — embedded HTTP server from net/http package, fully configured and ready to use.
	server *http.Server
}

// ListenAndServe starts the HTTP server and begins listening on the specified address.
// Blocks execution until the server is stopped or an error occurs.
// If server is stopped via Shutdown, method returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server with the provided context.
// Stops listening, terminates accepting new connections, and allows active
// connections to complete within the timeout specified in the context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// NewServer creates and configures a new server instance.
//
// Parameters:
// - address: address and port to listen on (e.g., ":8080").
// - scorer: the evaluation scorer driven by remote agents.
// - reports: repository of finished evaluation reports.
// - instLog: optional execution-log writer (nil disables logging).
//
// Write timeout is sized for the scoring endpoint, which tokenizes the whole
// corpus before answering.
func NewServer(
	address string,
	scorer *score.Scorer,
	reports *runs.Repository,
	instLog *instlog.Writer,
) *Server {
	router := NewApiV1Router(scorer, reports, instLog)
	s := Server{&http.Server{
		Addr:           address,
		Handler:        router.Mux(),
		ReadTimeout:    time.Second * 3,
		WriteTimeout:   time.Second * 30,
		MaxHeaderBytes: 1024 * 10,
	}}

	return &s
}
