package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/schema"
	"github.com/crisrod14/destinosAI/internal/server/endpoints"
	"github.com/crisrod14/destinosAI/internal/syncer"
)

var (
	editSet    []string
	editFile   string
	editEditor bool
)

var editCmd = &cobra.Command{
	Use:   "edit <location>",
	Short: "Edit fields of a destination",
	Long: `Edit fields of a destination. Exactly one source of changes is used:

  --set FIELD=value     repeatable; applies single fields
  --file record.yaml    a YAML or JSON object of field values; creates the
                        destination when it does not exist
  --editor              opens $EDITOR on a YAML dump of the record

LOCATION cannot be changed. --set rejects unknown field names; --file
and --editor ignore them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := 0
		for _, set := range []bool{len(editSet) > 0, editFile != "", editEditor} {
			if set {
				sources++
			}
		}
		if sources != 1 {
			return errors.New("use exactly one of --set, --file or --editor")
		}

		location := args[0]
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			var res *syncer.MutationResult
			var err error
			switch {
			case len(editSet) > 0:
				changes, perr := parseAssignments(editSet)
				if perr != nil {
					return perr
				}
				res, err = a.Orchestrator.Edit(ctx, location, changes)
			case editFile != "":
				payload, rerr := readRecordFile(editFile)
				if rerr != nil {
					return rerr
				}
				res, err = a.Orchestrator.ApplyJSON(ctx, location, payload)
			default:
				current, gerr := a.Orchestrator.Record(ctx, location)
				if gerr != nil {
					return gerr
				}
				payload, changed, eerr := editInEditor(current)
				if eerr != nil {
					return eerr
				}
				if !changed {
					fmt.Fprintln(os.Stderr, "no changes")
					return nil
				}
				res, err = a.Orchestrator.ApplyJSON(ctx, location, payload)
			}
			if err != nil {
				return err
			}
			return api.Output(endpoints.MutationResponse(*res))
		})
	},
}

// parseAssignments turns FIELD=value pairs into a change set.
func parseAssignments(pairs []string) (map[string]string, error) {
	changes := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: --set wants FIELD=value, got %q", syncer.ErrInvalidRecord, p)
		}
		changes[name] = value
	}
	return changes, nil
}

// readRecordFile reads a record file as a JSON payload. YAML files are
// converted; every value must be a scalar.
func readRecordFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlToJSON(data)
	default:
		return data, nil
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var fields map[string]string
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", syncer.ErrInvalidRecord, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: record file is empty", syncer.ErrInvalidRecord)
	}
	return json.Marshal(fields)
}

// editInEditor opens $EDITOR on rec and returns the edited record as JSON.
func editInEditor(rec schema.Record) ([]byte, bool, error) {
	before, err := yaml.Marshal(rec)
	if err != nil {
		return nil, false, err
	}

	f, err := os.CreateTemp("", "destinos-*.yaml")
	if err != nil {
		return nil, false, err
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.Write(before); err != nil {
		f.Close()
		return nil, false, err
	}
	if err := f.Close(); err != nil {
		return nil, false, err
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	// EDITOR may carry arguments, e.g. "code --wait".
	argv := strings.Fields(editor)
	c := exec.Command(argv[0], append(argv[1:], path)...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return nil, false, fmt.Errorf("editor %s: %w", argv[0], err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	if bytes.Equal(before, after) {
		return nil, false, nil
	}
	payload, err := yamlToJSON(after)
	return payload, true, err
}

func init() {
	editCmd.Flags().StringArrayVar(&editSet, "set", nil, "FIELD=value to apply (repeatable)")
	editCmd.Flags().StringVarP(&editFile, "file", "f", "", "YAML or JSON file of field values")
	editCmd.Flags().BoolVar(&editEditor, "editor", false, "edit the record in $EDITOR")
	rootCmd.AddCommand(editCmd)
}
