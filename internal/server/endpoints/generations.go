package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/llmcall"
	"github.com/crisrod14/destinosAI/internal/svcctx"
)

// GenerationsResponse contains a list of recorded generation calls.
type GenerationsResponse struct {
	Calls []llmcall.Call `json:"calls" yaml:"calls"`
	Total int            `json:"total" yaml:"total"`
}

// RenderText prints one line per call, newest first.
func (g GenerationsResponse) RenderText() string {
	if len(g.Calls) == 0 {
		return "no generation calls"
	}
	var sb strings.Builder
	for _, c := range g.Calls {
		status := "ok"
		if !c.Success {
			status = "failed"
			if c.ErrorType != "" {
				status += " (" + c.ErrorType + ")"
			}
		}
		fmt.Fprintf(&sb, "%s  %-20s #%d  %s/%s  %dms  %d+%d tokens  %s\n",
			c.Timestamp.Local().Format("2006-01-02 15:04:05"),
			c.Location, c.Attempt, c.Provider, c.Model, c.LatencyMs,
			c.InputTokens, c.OutputTokens, status)
	}
	return sb.String()
}

// GenerationResponse contains a single call.
type GenerationResponse struct {
	Call *llmcall.Call `json:"call,omitempty" yaml:"call,omitempty"`
}

// ParseGenerationsQuery builds a filter from query parameters.
func ParseGenerationsQuery(q url.Values) (llmcall.QueryFilter, error) {
	filter := llmcall.QueryFilter{
		Location:  q.Get("location"),
		PromptKey: q.Get("prompt_key"),
		Provider:  q.Get("provider"),
		Model:     q.Get("model"),
	}

	if v := q.Get("success"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("invalid success filter: %q must be true or false", v)
		}
		filter.Success = &b
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("invalid limit: %q must be an integer", v)
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("invalid offset: %q must be an integer", v)
		}
		filter.Offset = offset
	}
	if v := q.Get("after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid after time: %q must be RFC3339 format (e.g., 2024-01-15T00:00:00Z)", v)
		}
		filter.After = &t
	}
	if v := q.Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid before time: %q must be RFC3339 format (e.g., 2024-01-15T00:00:00Z)", v)
		}
		filter.Before = &t
	}
	return filter, nil
}

// ListGenerationsEndpoint handles GET /api/generations.
type ListGenerationsEndpoint struct{}

func (e *ListGenerationsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/generations", e.handler
}

func (e *ListGenerationsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List generation calls
//	@Description	Get recorded model calls with optional filters
//	@Tags			generations
//	@Produce		json
//	@Param			location	query		string	false	"Filter by destination"
//	@Param			prompt_key	query		string	false	"Filter by prompt key"
//	@Param			provider	query		string	false	"Filter by provider"
//	@Param			model		query		string	false	"Filter by model"
//	@Param			success		query		bool	false	"Filter by success status (true or false)"
//	@Param			limit		query		int		false	"Max results (default 50)"
//	@Param			offset		query		int		false	"Result offset"
//	@Param			after		query		string	false	"Filter calls after this RFC3339 timestamp"
//	@Param			before		query		string	false	"Filter calls before this RFC3339 timestamp"
//	@Success		200			{object}	GenerationsResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/generations [get]
func (e *ListGenerationsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	calls := svcctx.LLMCallStoreFrom(r.Context())
	if calls == nil {
		writeError(w, http.StatusInternalServerError, "generation log not available")
		return
	}

	filter, err := ParseGenerationsQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := calls.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []llmcall.Call{}
	}

	writeJSON(w, http.StatusOK, GenerationsResponse{Calls: list, Total: len(list)})
}

func (e *ListGenerationsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var location, promptKey, provider, model string
	var limit, offset int
	var successOnly, failedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generation calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := GenerationsQuery(location, promptKey, provider, model, successOnly, failedOnly, limit, offset)
			path := "/api/generations"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			client := api.NewClient(getServerURL())
			var resp GenerationsResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "Filter by destination")
	cmd.Flags().StringVar(&promptKey, "prompt-key", "", "Filter by prompt key")
	cmd.Flags().StringVar(&provider, "provider", "", "Filter by provider")
	cmd.Flags().StringVar(&model, "model", "", "Filter by model")
	cmd.Flags().BoolVar(&successOnly, "success", false, "Only show successful calls")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed calls")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Result offset")
	return cmd
}

// GenerationsQuery encodes list flags as query parameters.
func GenerationsQuery(location, promptKey, provider, model string, successOnly, failedOnly bool, limit, offset int) url.Values {
	params := url.Values{}
	if location != "" {
		params.Set("location", location)
	}
	if promptKey != "" {
		params.Set("prompt_key", promptKey)
	}
	if provider != "" {
		params.Set("provider", provider)
	}
	if model != "" {
		params.Set("model", model)
	}
	if successOnly {
		params.Set("success", "true")
	}
	if failedOnly {
		params.Set("success", "false")
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	return params
}

// GetGenerationEndpoint handles GET /api/generations/{id}.
type GetGenerationEndpoint struct{}

func (e *GetGenerationEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/generations/{id}", e.handler
}

func (e *GetGenerationEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a generation call
//	@Description	Get a single recorded call, including the raw model response
//	@Tags			generations
//	@Produce		json
//	@Param			id	path		string	true	"Call ID"
//	@Success		200	{object}	GenerationResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/generations/{id} [get]
func (e *GetGenerationEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	calls := svcctx.LLMCallStoreFrom(r.Context())
	if calls == nil {
		writeError(w, http.StatusInternalServerError, "generation log not available")
		return
	}

	call, err := calls.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if call == nil {
		writeError(w, http.StatusNotFound, "generation call not found")
		return
	}

	writeJSON(w, http.StatusOK, GenerationResponse{Call: call})
}

func (e *GetGenerationEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a generation call by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp GenerationResponse
			if err := client.Get(cmd.Context(), "/api/generations/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp.Call)
		},
	}
}
