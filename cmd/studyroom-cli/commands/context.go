package commands

import (
	"fmt"
	"os"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/futig/studyroom-rag/internal/pkg/validator"
	"github.com/spf13/cobra"
)

var (
	contextRoom     string
	contextTopic    string
	contextFiles    []string
	contextMaxChars int
	contextFormat   string
	contextOut      string
)

// NewContextCmd creates the context command
func NewContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Assemble study context for a topic",
		Long: `Assemble bounded context for a topic from the given files, or from every
file in the room when no --file is passed. Plain text is printed to stdout;
with --format the rendered document is written to --out.`,
		Args: cobra.NoArgs,
		RunE: runContext,
	}

	cmd.Flags().StringVar(&contextRoom, "room", "", "Room ID, used when no --file is given")
	cmd.Flags().StringVar(&contextTopic, "topic", "", "Topic or request text")
	cmd.Flags().StringSliceVar(&contextFiles, "file", nil, "File ID to draw from (repeatable)")
	cmd.Flags().IntVar(&contextMaxChars, "max-chars", 0, "Character budget (0 uses the configured default)")
	cmd.Flags().StringVar(&contextFormat, "format", "", "Export format: markdown, docx or pdf")
	cmd.Flags().StringVarP(&contextOut, "out", "o", "", "Output path for --format")

	return cmd
}

func runContext(cmd *cobra.Command, _ []string) error {
	req, err := contextRequest()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	components, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer components.Close()

	if req.Format == "" {
		result, err := components.Retrieval.BuildContext(ctx, contextRoom, req)
		if err != nil {
			return fmt.Errorf("building context: %w", err)
		}
		if !result.Found {
			fmt.Fprintln(cmd.ErrOrStderr(), "No vectorized content found")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Context)
		return nil
	}

	exported, err := components.Retrieval.ExportContext(ctx, contextRoom, req)
	if err != nil {
		return fmt.Errorf("exporting context: %w", err)
	}

	out := contextOut
	if out == "" {
		out = exported.FileName
	}
	if err := os.WriteFile(out, exported.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(exported.Data))
	return nil
}

// contextRequest validates the flags before anything is connected
func contextRequest() (*entity.ContextRequest, error) {
	if contextRoom == "" && len(contextFiles) == 0 {
		return nil, fmt.Errorf("either --room or --file is required")
	}
	if contextRoom != "" {
		if err := validator.ValidateID("room", contextRoom); err != nil {
			return nil, err
		}
	}
	if contextOut != "" && contextFormat == "" {
		return nil, fmt.Errorf("--out requires --format")
	}

	req := &entity.ContextRequest{
		Topic:    contextTopic,
		FileIDs:  contextFiles,
		MaxChars: contextMaxChars,
		Format:   entity.ResultFormat(contextFormat),
	}

	var v validator.Validator
	if err := v.ValidateContextRequest(req); err != nil {
		return nil, err
	}

	return req, nil
}
