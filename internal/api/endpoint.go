package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Endpoint pairs an HTTP route on `destinos serve` with the `destinos api`
// command that calls it, so both sides share one request and response type.
type Endpoint interface {
	// Route is the method, the ServeMux pattern and the handler.
	Route() (method, path string, handler http.HandlerFunc)

	// RequiresInit reports whether the handler needs the store and the
	// orchestrator. Such routes answer 503 until both are present.
	RequiresInit() bool

	// Command builds the client command. getServerURL is read when the
	// command runs, after --server is parsed.
	Command(getServerURL func() string) *cobra.Command
}

// Pattern is the ServeMux pattern for ep, e.g. "GET /api/destinations".
func Pattern(ep Endpoint) string {
	method, path, _ := ep.Route()
	return method + " " + path
}
