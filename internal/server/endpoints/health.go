package endpoints

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/render"
	"github.com/crisrod14/destinosAI/internal/svcctx"
	"github.com/crisrod14/destinosAI/internal/syncer"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// ReadyEndpoint handles GET /ready.
type ReadyEndpoint struct{}

func (e *ReadyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/ready", e.handler
}

func (e *ReadyEndpoint) RequiresInit() bool { return false }

func (e *ReadyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Store: "ok"}

	st := svcctx.StoreFrom(r.Context())
	if st == nil || svcctx.OrchestratorFrom(r.Context()) == nil {
		resp.Status = "degraded"
		resp.Store = "not_initialized"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	if err := st.DB().PingContext(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Store = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ReadyEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check server readiness (includes the local store)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/ready", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			if resp.Store != "" {
				fmt.Printf("Store:  %s\n", resp.Store)
			}
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server   string         `json:"server" yaml:"server"`
	Sync     syncer.Status  `json:"sync" yaml:"sync"`
	Records  int            `json:"records" yaml:"records"`
	Provider ProviderStatus `json:"provider" yaml:"provider"`
}

// ProviderStatus shows the active generation provider.
type ProviderStatus struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	Available bool   `json:"available" yaml:"available"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RenderText formats the status for the terminal.
func (s StatusResponse) RenderText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Server:   %s\n", s.Server)
	fmt.Fprintf(&sb, "Records:  %d\n", s.Records)
	provider := s.Provider.Name
	if !s.Provider.Available {
		provider = "unavailable"
		if s.Provider.Error != "" {
			provider += " (" + s.Provider.Error + ")"
		}
	} else if s.Provider.Model != "" {
		provider += " / " + s.Provider.Model
	}
	fmt.Fprintf(&sb, "Provider: %s\n", provider)
	if s.Sync.RemoteError != "" {
		fmt.Fprintf(&sb, "Mirror:   %s\n", s.Sync.RemoteError)
	}
	if !s.Sync.LastPush.IsZero() {
		fmt.Fprintf(&sb, "Pushed:   %s\n", s.Sync.LastPush.Local().Format("2006-01-02 15:04:05"))
	}
	sb.WriteString(render.New(0).Sync(string(s.Sync.State), s.Sync.LastError))
	return sb.String()
}

// StatusEndpoint handles GET /api/status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get sync status
//	@Description	Mirror state, record count and generation provider availability
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/status [get]
func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp, err := BuildStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// BuildStatus assembles a StatusResponse from the services in ctx.
func BuildStatus(ctx context.Context) (StatusResponse, error) {
	resp := StatusResponse{Server: "running"}

	if o := svcctx.OrchestratorFrom(ctx); o != nil {
		resp.Sync = o.Status()
	}
	if st := svcctx.StoreFrom(ctx); st != nil {
		n, err := st.Count(ctx)
		if err != nil {
			return resp, err
		}
		resp.Records = n
	}
	if registry := svcctx.RegistryFrom(ctx); registry != nil {
		client, err := registry.Active()
		if err != nil {
			resp.Provider.Error = err.Error()
		} else {
			resp.Provider.Available = true
			resp.Provider.Name = client.Name()
		}
	}
	if g := svcctx.GeneratorFrom(ctx); g != nil {
		resp.Provider.Model = g.Settings().Model
	}
	return resp, nil
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get sync status and provider availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/api/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
