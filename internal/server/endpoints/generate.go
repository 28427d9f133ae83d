package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/render"
	"github.com/crisrod14/destinosAI/internal/svcctx"
	"github.com/crisrod14/destinosAI/internal/syncer"
)

// GenerateRequest names the destinations to create. Input is split on
// newlines; Names are appended after it.
type GenerateRequest struct {
	Input string   `json:"input,omitempty"`
	Names []string `json:"names,omitempty"`
}

// Text joins both forms into newline-separated input.
func (r GenerateRequest) Text() string {
	parts := make([]string, 0, len(r.Names)+1)
	if r.Input != "" {
		parts = append(parts, r.Input)
	}
	parts = append(parts, r.Names...)
	return strings.Join(parts, "\n")
}

// GenerateResponse reports every requested name in input order.
type GenerateResponse struct {
	Outcomes []syncer.GenerateOutcome `json:"outcomes" yaml:"outcomes"`
	Created  int                      `json:"created" yaml:"created"`
	Skipped  int                      `json:"skipped" yaml:"skipped"`
	Failed   int                      `json:"failed" yaml:"failed"`
	Error    string                   `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewGenerateResponse summarizes a report.
func NewGenerateResponse(report *syncer.GenerateReport) GenerateResponse {
	resp := GenerateResponse{Outcomes: []syncer.GenerateOutcome{}}
	if report == nil {
		return resp
	}
	if report.Outcomes != nil {
		resp.Outcomes = report.Outcomes
	}
	resp.Created = report.Count(syncer.OutcomeCreated)
	resp.Skipped = report.Count(syncer.OutcomeSkipped)
	resp.Failed = report.Count(syncer.OutcomeFailed)
	return resp
}

// RenderText prints one line per name and a summary.
func (g GenerateResponse) RenderText() string {
	r := render.New(0)
	var sb strings.Builder
	for _, o := range g.Outcomes {
		switch o.Outcome {
		case syncer.OutcomeCreated:
			fmt.Fprintf(&sb, "created %s  %s\n", o.Location, r.Sync(string(o.State), o.SyncError))
			for _, w := range o.Warnings {
				fmt.Fprintf(&sb, "  warning: %s\n", w)
			}
		case syncer.OutcomeSkipped:
			fmt.Fprintf(&sb, "skipped %s: %s\n", o.Location, o.Notice)
		default:
			fmt.Fprintf(&sb, "failed  %s: %s\n", o.Location, o.Error)
		}
	}
	fmt.Fprintf(&sb, "%d created, %d skipped, %d failed\n", g.Created, g.Skipped, g.Failed)
	if g.Error != "" {
		fmt.Fprintf(&sb, "error: %s\n", g.Error)
	}
	return sb.String()
}

// GenerateEndpoint handles POST /api/generate.
type GenerateEndpoint struct{}

func (e *GenerateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/generate", e.handler
}

func (e *GenerateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Generate destinations
//	@Description	Generate a record for each new name. Existing names are skipped
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GenerateRequest	true	"Names to generate"
//	@Success		200		{object}	GenerateResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	GenerateResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/generate [post]
func (e *GenerateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	input := req.Text()
	if len(syncer.ParseNames(input)) == 0 {
		writeError(w, http.StatusBadRequest, "no destination names given")
		return
	}

	o := svcctx.OrchestratorFrom(r.Context())
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "orchestrator not initialized")
		return
	}

	report, err := o.Generate(r.Context(), input)
	if err != nil {
		if report == nil {
			writeSyncError(w, err)
			return
		}
		// Partial batch: report what completed before the store failed.
		resp := NewGenerateResponse(report)
		resp.Error = err.Error()
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	writeJSON(w, http.StatusOK, NewGenerateResponse(report))
}

func (e *GenerateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "generate [name...]",
		Short: "Generate destinations by name",
		Long: `Generate a destination record for each name.

Names are taken from the arguments, or one per line from --file
(- reads stdin). Existing destinations are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := GenerateRequest{Names: args}
			if file != "" {
				input, err := ReadNames(file)
				if err != nil {
					return err
				}
				req.Input = input
			}
			if len(syncer.ParseNames(req.Text())) == 0 {
				return errors.New("no destination names given")
			}

			client := api.NewClient(getServerURL())
			var resp GenerateResponse
			if err := client.Post(cmd.Context(), "/api/generate", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "File with one name per line (- for stdin)")
	return cmd
}

// ReadNames reads newline-separated names from path, or stdin for "-".
func ReadNames(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read names: %w", err)
	}
	return string(data), nil
}
