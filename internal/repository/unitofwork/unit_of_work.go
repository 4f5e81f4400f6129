package unitofwork

import (
	"context"

	"restaurant-advisor-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SessionRepository() contract.SessionRepository
	TurnRepository() contract.TurnRepository
	LongTermRepository() contract.LongTermRepository
	KnowledgeDocumentRepository() contract.KnowledgeDocumentRepository
	DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository
	GraphRepository() contract.GraphRepository
}
