package embedding

import "context"

// Embedder is a remote embedding model. Output order matches input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
