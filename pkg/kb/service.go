// Package kb exposes the knowledge base as a semantic search collaborator:
// documents embedded into pgvector, queried by cosine similarity and scoped
// to the categories the caller may see.
package kb

import (
	"context"
	"fmt"

	"restaurant-advisor-be/internal/repository/unitofwork"
	"restaurant-advisor-be/pkg/advisor/evidence"
	"restaurant-advisor-be/pkg/embedding"
)

const DefaultSimilarityThreshold = 0.3

type Service struct {
	uowFactory unitofwork.RepositoryFactory
	embedder   embedding.EmbeddingProvider
	threshold  float64
}

func NewService(uowFactory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider, threshold float64) *Service {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Service{
		uowFactory: uowFactory,
		embedder:   embedder,
		threshold:  threshold,
	}
}

// Search embeds the query and returns the k most similar document snippets
// within the visible categories. Semantic carries the cosine similarity;
// keyword and hybrid scoring happen upstream.
func (s *Service) Search(ctx context.Context, query string, categories []string, k int) ([]evidence.Snippet, error) {
	vector, err := s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentEmbeddingRepository().SearchSimilarWithScore(ctx, vector, k, categories, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	snippets := make([]evidence.Snippet, len(scored))
	for i, hit := range scored {
		snippets[i] = evidence.Snippet{
			DocumentId: hit.Document.Id.String(),
			Title:      hit.Document.Title,
			Content:    hit.Document.Content,
			Category:   hit.Document.Category,
			Page:       hit.Document.Page,
			Semantic:   hit.Similarity,
		}
	}
	return snippets, nil
}

// Ingest stores a document and its embedding in one step.
func (s *Service) Ingest(ctx context.Context, title, content, category, sourceRef string, page int) error {
	vector, err := s.embedder.Generate(ctx, content, embedding.TaskRetrievalDocument)
	if err != nil {
		return fmt.Errorf("embed document: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	doc := newDocument(title, content, category, sourceRef, page)
	if err := uow.KnowledgeDocumentRepository().Create(ctx, doc); err != nil {
		uow.Rollback()
		return fmt.Errorf("create document: %w", err)
	}
	if err := uow.DocumentEmbeddingRepository().Create(ctx, doc.Id, vector); err != nil {
		uow.Rollback()
		return fmt.Errorf("create embedding: %w", err)
	}
	return uow.Commit()
}
