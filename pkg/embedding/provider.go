package embedding

import "context"

// Task types hint the backend how the embedding will be used.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider generates a unit-length vector for a piece of text.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}
