package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/svcctx"
)

// SyncEndpoint handles POST /api/sync.
type SyncEndpoint struct{}

func (e *SyncEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sync", e.handler
}

func (e *SyncEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Push to the mirror
//	@Description	Push the full local set to the remote sheet. A failed push is reported as sync_state local_only
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	MutationResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/sync [post]
func (e *SyncEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	o := svcctx.OrchestratorFrom(r.Context())
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "orchestrator not initialized")
		return
	}

	res, err := o.Sync(r.Context())
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse(*res))
}

func (e *SyncEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push the full set to the remote sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp MutationResponse
			if err := client.Post(cmd.Context(), "/api/sync", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
