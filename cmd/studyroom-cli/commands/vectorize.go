package commands

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/futig/studyroom-rag/internal/pkg/validator"
	"github.com/spf13/cobra"
)

var (
	vectorizeRoom     string
	vectorizePath     string
	vectorizeMimeType string
)

// NewVectorizeCmd creates the vectorize command
func NewVectorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vectorize",
		Short: "Store a local document in a room and vectorize it",
		Long: `Upload a local document to blob storage, register it in the room and run
the ingestion pipeline. The file stays registered when vectorization fails.`,
		Args: cobra.NoArgs,
		RunE: runVectorize,
	}

	cmd.Flags().StringVar(&vectorizeRoom, "room", "", "Room ID (UUID)")
	cmd.Flags().StringVar(&vectorizePath, "path", "", "Path to the document")
	cmd.Flags().StringVar(&vectorizeMimeType, "mime", "", "MIME type (guessed from the extension when empty)")

	return cmd
}

func runVectorize(cmd *cobra.Command, _ []string) error {
	if err := validator.ValidateID("room", vectorizeRoom); err != nil {
		return err
	}
	if vectorizePath == "" {
		return fmt.Errorf("--path is required")
	}

	content, err := os.ReadFile(vectorizePath)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	mimeType := vectorizeMimeType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(vectorizePath))
	}

	ctx := cmd.Context()
	components, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer components.Close()

	file, err := components.Files.ImportFile(ctx, vectorizeRoom, filepath.Base(vectorizePath), mimeType, content)
	if err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %s as %s\n", file.Name, file.ID)

	result, err := components.Files.VectorizeContent(ctx, file, content)
	if err != nil {
		return fmt.Errorf("vectorizing %s: %w", file.ID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Vectorized %d chunk(s), generation %d\n", result.ChunkCount, result.Generation)
	return nil
}
