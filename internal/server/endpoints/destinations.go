package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/render"
	"github.com/crisrod14/destinosAI/internal/schema"
	"github.com/crisrod14/destinosAI/internal/store"
	"github.com/crisrod14/destinosAI/internal/svcctx"
	"github.com/crisrod14/destinosAI/internal/syncer"
)

// maxRecordBytes bounds a PUT body. A full record is a few KB.
const maxRecordBytes = 1 << 20

// DestinationsResponse lists stored destinations.
type DestinationsResponse struct {
	Destinations []store.Entry   `json:"destinations" yaml:"destinations"`
	Records      []schema.Record `json:"records,omitempty" yaml:"records,omitempty"`
	Total        int             `json:"total" yaml:"total"`
	Warnings     []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// RenderText formats the listing as a table.
func (d DestinationsResponse) RenderText() string {
	out := render.New(0).List(d.Destinations)
	for _, w := range d.Warnings {
		out += "warning: " + w + "\n"
	}
	return out
}

// DestinationResponse is a single record. It encodes as the record itself.
type DestinationResponse struct {
	schema.Record
}

// RenderText formats the record grouped by section.
func (d DestinationResponse) RenderText() string {
	return render.New(0).Record(d.Record)
}

// MutationResponse reports a completed mutation.
type MutationResponse syncer.MutationResult

// RenderText formats the mutation and its sync state.
func (m MutationResponse) RenderText() string {
	var sb strings.Builder
	subject := m.Op
	if m.Location != "" {
		subject += " " + m.Location
	}
	if !m.Changed {
		subject += " (no change)"
	}
	sb.WriteString(subject + "\n")
	for _, w := range m.Warnings {
		fmt.Fprintf(&sb, "warning: empty mandatory field %s\n", w)
	}
	sb.WriteString(render.New(0).Sync(string(m.State), m.SyncError))
	return sb.String()
}

// writeSyncError maps orchestrator errors to HTTP statuses.
func writeSyncError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, syncer.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, syncer.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, syncer.ErrCollaboratorUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func destinationPath(location string) string {
	return "/api/destinations/" + url.PathEscape(location)
}

// ListDestinationsEndpoint handles GET /api/destinations.
type ListDestinationsEndpoint struct{}

func (e *ListDestinationsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/destinations", e.handler
}

func (e *ListDestinationsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List destinations
//	@Description	List stored destinations in insertion order
//	@Tags			destinations
//	@Produce		json
//	@Param			full	query		bool	false	"Include every record's fields"
//	@Success		200		{object}	DestinationsResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/destinations [get]
func (e *ListDestinationsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "store not initialized")
		return
	}

	entries, err := st.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := DestinationsResponse{Destinations: entries, Total: len(entries)}
	if resp.Destinations == nil {
		resp.Destinations = []store.Entry{}
	}

	if r.URL.Query().Get("full") == "true" {
		recs, err := st.GetAll(r.Context())
		var corrupt *store.CorruptError
		switch {
		case errors.As(err, &corrupt):
			resp.Warnings = append(resp.Warnings, err.Error())
		case err != nil:
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Records = recs
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ListDestinationsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List destinations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/destinations"
			if full {
				path += "?full=true"
			}
			var resp DestinationsResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Include every record's fields")
	return cmd
}

// GetDestinationEndpoint handles GET /api/destinations/{location}.
type GetDestinationEndpoint struct{}

func (e *GetDestinationEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/destinations/{location}", e.handler
}

func (e *GetDestinationEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a destination
//	@Description	Get every field of one destination in schema order
//	@Tags			destinations
//	@Produce		json
//	@Param			location	path		string	true	"Destination name"
//	@Success		200			{object}	map[string]string
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/destinations/{location} [get]
func (e *GetDestinationEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	location := r.PathValue("location")
	if location == "" {
		writeError(w, http.StatusBadRequest, "location required")
		return
	}

	o := svcctx.OrchestratorFrom(r.Context())
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "orchestrator not initialized")
		return
	}

	rec, err := o.Record(r.Context(), location)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (e *GetDestinationEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <location>",
		Short: "Get a destination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp DestinationResponse
			if err := client.Get(cmd.Context(), destinationPath(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// PutDestinationEndpoint handles PUT /api/destinations/{location}.
type PutDestinationEndpoint struct{}

func (e *PutDestinationEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/destinations/{location}", e.handler
}

func (e *PutDestinationEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Create or patch a destination
//	@Description	Apply a JSON object of field values. Missing destinations are created
//	@Tags			destinations
//	@Accept			json
//	@Produce		json
//	@Param			location	path		string				true	"Destination name"
//	@Param			body		body		map[string]string	true	"Field values"
//	@Success		200			{object}	MutationResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/destinations/{location} [put]
func (e *PutDestinationEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	location := r.PathValue("location")
	if location == "" {
		writeError(w, http.StatusBadRequest, "location required")
		return
	}

	o := svcctx.OrchestratorFrom(r.Context())
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "orchestrator not initialized")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}

	res, err := o.ApplyJSON(r.Context(), location, payload)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse(*res))
}

func (e *PutDestinationEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "put <location>",
		Short: "Create or patch a destination from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(file)
			if err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp MutationResponse
			if err := client.Put(cmd.Context(), destinationPath(args[0]), json.RawMessage(payload), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with field values (- for stdin)")
	return cmd
}

// readPayload reads a JSON document from path, or stdin for "-".
func readPayload(path string) ([]byte, error) {
	if path == "-" || path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// DeleteDestinationEndpoint handles DELETE /api/destinations/{location}.
type DeleteDestinationEndpoint struct{}

func (e *DeleteDestinationEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/destinations/{location}", e.handler
}

func (e *DeleteDestinationEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a destination
//	@Description	Delete a destination and push the remaining set. Deleting an unknown destination is a no-op
//	@Tags			destinations
//	@Produce		json
//	@Param			location	path		string	true	"Destination name"
//	@Success		200			{object}	MutationResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/destinations/{location} [delete]
func (e *DeleteDestinationEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	location := r.PathValue("location")
	if location == "" {
		writeError(w, http.StatusBadRequest, "location required")
		return
	}

	o := svcctx.OrchestratorFrom(r.Context())
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "orchestrator not initialized")
		return
	}

	res, err := o.Delete(r.Context(), location)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse(*res))
}

func (e *DeleteDestinationEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <location>",
		Short: "Delete a destination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp MutationResponse
			if err := client.Delete(cmd.Context(), destinationPath(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ResetDestinationsEndpoint handles DELETE /api/destinations.
type ResetDestinationsEndpoint struct{}

func (e *ResetDestinationsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/destinations", e.handler
}

func (e *ResetDestinationsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete every destination
//	@Description	Clear the local store and push the empty set. Requires confirm=true
//	@Tags			destinations
//	@Produce		json
//	@Param			confirm	query		bool	true	"Must be true"
//	@Success		200		{object}	MutationResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/destinations [delete]
func (e *ResetDestinationsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "reset requires confirm=true")
		return
	}

	o := svcctx.OrchestratorFrom(r.Context())
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "orchestrator not initialized")
		return
	}

	res, err := o.Reset(r.Context())
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse(*res))
}

func (e *ResetDestinationsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes every destination; pass --yes to confirm")
			}
			client := api.NewClient(getServerURL())
			var resp MutationResponse
			if err := client.Delete(cmd.Context(), "/api/destinations?confirm=true", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting every destination")
	return cmd
}
