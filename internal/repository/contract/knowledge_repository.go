package contract

import (
	"context"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/repository/specification"

	"github.com/google/uuid"
)

type KnowledgeDocumentRepository interface {
	Create(ctx context.Context, doc *entity.KnowledgeDocument) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeDocument, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

// ScoredDocument is a similarity hit joined with its document row.
type ScoredDocument struct {
	Document   entity.KnowledgeDocument
	Similarity float64
}

type DocumentEmbeddingRepository interface {
	Create(ctx context.Context, documentId uuid.UUID, values []float32) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	// SearchSimilarWithScore returns documents by cosine similarity,
	// restricted to the visible categories.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, categories []string, threshold float64) ([]*ScoredDocument, error)
	Count(ctx context.Context) (int64, error)
}
