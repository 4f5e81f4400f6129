package implementation

import (
	"context"

	"restaurant-advisor-be/internal/mapper"
	"restaurant-advisor-be/internal/model"
	"restaurant-advisor-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewDocumentEmbeddingRepository(db *gorm.DB) contract.DocumentEmbeddingRepository {
	return &DocumentEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *DocumentEmbeddingRepositoryImpl) Create(ctx context.Context, documentId uuid.UUID, values []float32) error {
	m := &model.DocumentEmbedding{
		DocumentId:     documentId,
		EmbeddingValue: pgvector.NewVector(values),
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *DocumentEmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.DocumentEmbedding{}).Error
}

// SearchSimilarWithScore computes cosine similarity as 1 - (embedding_value <=> query)
// and joins the document row so callers never need a second lookup.
func (r *DocumentEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, categories []string, threshold float64) ([]*contract.ScoredDocument, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.KnowledgeDocument
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("document_embeddings").
		Select("knowledge_documents.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN knowledge_documents ON knowledge_documents.id = document_embeddings.document_id").
		Where("document_embeddings.deleted_at IS NULL").
		Where("knowledge_documents.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold)

	if len(categories) > 0 {
		query = query.Where("knowledge_documents.category IN ?", categories)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocument, len(results))
	for i, res := range results {
		doc := r.mapper.DocumentToEntity(&res.KnowledgeDocument)
		scored[i] = &contract.ScoredDocument{
			Document:   *doc,
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *DocumentEmbeddingRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DocumentEmbedding{}).Count(&count).Error
	return count, err
}
