package service

import (
	"context"
	"time"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/repository/specification"
	"restaurant-advisor-be/internal/repository/unitofwork"
	"restaurant-advisor-be/pkg/advisor/orchestrator"

	"github.com/google/uuid"
)

// gormDirectory resolves users and sessions for the orchestrator.
type gormDirectory struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDirectory(uowFactory unitofwork.RepositoryFactory) orchestrator.Directory {
	return &gormDirectory{uowFactory: uowFactory}
}

func (d *gormDirectory) User(ctx context.Context, userId uuid.UUID) (*entity.User, error) {
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
}

func (d *gormDirectory) Session(ctx context.Context, sessionId uuid.UUID) (*entity.Session, error) {
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
}

func (d *gormDirectory) CreateSession(ctx context.Context, userId uuid.UUID) (*entity.Session, error) {
	now := time.Now()
	session := &entity.Session{
		Id:           uuid.New(),
		UserId:       userId,
		Status:       entity.SessionStatusActive,
		CreatedAt:    now,
		LastActivity: now,
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
