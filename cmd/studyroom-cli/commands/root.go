package commands

import (
	"context"
	"fmt"

	"github.com/futig/studyroom-rag/internal/builder"
	"github.com/futig/studyroom-rag/internal/config"
	"github.com/spf13/cobra"
)

var environment string

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "studyroom-cli",
		Short: "Vectorize study documents and assemble context from the terminal",
		Long: `studyroom-cli runs the ingestion and retrieval pipelines directly against
the configured database and blob storage, without the HTTP server.

Examples:
  studyroom-cli vectorize --room 6f1c... --path ./week3.pdf
  studyroom-cli context --room 6f1c... --topic "페이지 교체 알고리즘"
  studyroom-cli context --file 9a2b... --topic "기말 총정리" --format pdf --out summary.pdf`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&environment, "env", "local", "Environment to load (.env.<env>)")

	cmd.AddCommand(NewVectorizeCmd())
	cmd.AddCommand(NewContextCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// buildComponents loads the configuration for --env and wires the pipelines
func buildComponents(ctx context.Context) (*builder.Components, error) {
	cfg, err := config.Load(environment)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	components, err := builder.BuildComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("building components: %w", err)
	}

	return components, nil
}
