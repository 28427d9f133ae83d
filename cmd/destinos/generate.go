package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/internal/server/endpoints"
	"github.com/crisrod14/destinosAI/internal/syncer"
)

var generateFile string

var generateCmd = &cobra.Command{
	Use:   "generate [name...]",
	Short: "Generate destinations by name",
	Long: `Generate a destination record for each name.

Names are taken from the arguments, or one per line from --file. With
neither, names are read from stdin:

  destinos generate ARICA "LA SERENA"
  printf 'ARICA\nIQUIQUE\n' | destinos generate

Existing destinations are skipped. A failed generation is reported and
the rest of the batch continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.Join(args, "\n")
		if generateFile != "" || len(args) == 0 {
			path := generateFile
			if path == "" {
				path = "-"
			}
			text, err := endpoints.ReadNames(path)
			if err != nil {
				return err
			}
			input = strings.Join(append(args, text), "\n")
		}
		if len(syncer.ParseNames(input)) == 0 {
			return errors.New("no destination names given")
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			report, err := a.Orchestrator.Generate(ctx, input)
			resp := endpoints.NewGenerateResponse(report)
			if err != nil {
				resp.Error = err.Error()
			}
			if report != nil {
				if outErr := api.Output(resp); outErr != nil {
					return outErr
				}
			}
			if err != nil {
				return err
			}
			if resp.Failed > 0 {
				return errors.New("some destinations could not be generated")
			}
			return nil
		})
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "file with one name per line (- for stdin)")
	rootCmd.AddCommand(generateCmd)
}
