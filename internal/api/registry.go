package api

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// Registry is an ordered set of endpoints, unique by pattern.
type Registry struct {
	endpoints []Endpoint
	patterns  map[string]bool
}

// NewRegistry returns a registry holding eps. It panics on a duplicate
// pattern, since the endpoint list is fixed at compile time.
func NewRegistry(eps ...Endpoint) *Registry {
	r := &Registry{patterns: make(map[string]bool)}
	for _, ep := range eps {
		if err := r.Register(ep); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds ep. Two endpoints may not share a pattern.
func (r *Registry) Register(ep Endpoint) error {
	p := Pattern(ep)
	if r.patterns[p] {
		return fmt.Errorf("duplicate endpoint %q", p)
	}
	r.patterns[p] = true
	r.endpoints = append(r.endpoints, ep)
	return nil
}

// RegisterRoutes mounts every route on mux. Routes that need the store
// are wrapped with requireInit.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, requireInit func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		_, _, handler := ep.Route()
		if ep.RequiresInit() {
			handler = requireInit(handler)
		}
		mux.HandleFunc(Pattern(ep), handler)
	}
}

// AddCommands attaches each endpoint's client command to parent.
func (r *Registry) AddCommands(parent *cobra.Command, getServerURL func() string) {
	for _, ep := range r.endpoints {
		parent.AddCommand(ep.Command(getServerURL))
	}
}

// Patterns lists the registered patterns in order.
func (r *Registry) Patterns() []string {
	out := make([]string, len(r.endpoints))
	for i, ep := range r.endpoints {
		out[i] = Pattern(ep)
	}
	return out
}
