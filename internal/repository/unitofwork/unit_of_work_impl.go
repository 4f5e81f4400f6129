package unitofwork

import (
	"context"
	"fmt"

	"restaurant-advisor-be/internal/repository/contract"
	"restaurant-advisor-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SessionRepository() contract.SessionRepository {
	return implementation.NewSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) TurnRepository() contract.TurnRepository {
	return implementation.NewTurnRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LongTermRepository() contract.LongTermRepository {
	return implementation.NewLongTermRepository(u.getDB())
}

func (u *UnitOfWorkImpl) KnowledgeDocumentRepository() contract.KnowledgeDocumentRepository {
	return implementation.NewKnowledgeDocumentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository {
	return implementation.NewDocumentEmbeddingRepository(u.getDB())
}

func (u *UnitOfWorkImpl) GraphRepository() contract.GraphRepository {
	return implementation.NewGraphRepository(u.getDB())
}
