package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/schema"
)

// SchemaResponse describes the record layout.
type SchemaResponse struct {
	Fields     []schema.Field  `json:"fields" yaml:"fields"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty" yaml:"-"`
}

// NewSchemaResponse returns the current layout.
func NewSchemaResponse() SchemaResponse {
	return SchemaResponse{Fields: schema.Fields(), JSONSchema: schema.JSONSchema()}
}

// RenderText lists the fields grouped by section.
func (s SchemaResponse) RenderText() string {
	var sb strings.Builder
	var section schema.Section
	for i, f := range s.Fields {
		if f.Section != section {
			section = f.Section
			fmt.Fprintf(&sb, "%s\n", section)
		}
		flags := string(f.Kind)
		if f.Mandatory {
			flags += ", mandatory"
		}
		if f.Prompt != "" {
			flags += ", generated"
		}
		fmt.Fprintf(&sb, "  %2d  %-40s %s\n", i+1, f.Name, flags)
	}
	return sb.String()
}

// SchemaEndpoint handles GET /api/schema.
type SchemaEndpoint struct{}

func (e *SchemaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/schema", e.handler
}

func (e *SchemaEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Get the record schema
//	@Description	Ordered field list and the JSON Schema used to validate record payloads
//	@Tags			schema
//	@Produce		json
//	@Success		200	{object}	SchemaResponse
//	@Router			/api/schema [get]
func (e *SchemaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewSchemaResponse())
}

func (e *SchemaEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the record schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SchemaResponse
			if err := client.Get(cmd.Context(), "/api/schema", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
