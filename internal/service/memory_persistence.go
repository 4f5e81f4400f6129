package service

import (
	"context"
	"time"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/repository/specification"
	"restaurant-advisor-be/internal/repository/unitofwork"
	"restaurant-advisor-be/pkg/advisor/memory"

	"github.com/google/uuid"
)

// gormPersistence backs the conversational memory store with the relational
// repositories. One unit of work per call; the store serializes writers
// above this layer.
type gormPersistence struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMemoryPersistence(uowFactory unitofwork.RepositoryFactory) memory.Persistence {
	return &gormPersistence{uowFactory: uowFactory}
}

func (p *gormPersistence) SaveTurn(ctx context.Context, turn *entity.ConversationTurn) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	return uow.TurnRepository().Create(ctx, turn)
}

func (p *gormPersistence) RecentTurns(ctx context.Context, sessionId uuid.UUID, n int) ([]entity.ConversationTurn, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	specs := []specification.Specification{
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "seq", Desc: true},
	}
	if n > 0 {
		specs = append(specs, specification.Pagination{Limit: n})
	}
	rows, err := uow.TurnRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	// Reverse back to arrival order.
	turns := make([]entity.ConversationTurn, len(rows))
	for i, row := range rows {
		turns[len(rows)-1-i] = *row
	}
	return turns, nil
}

func (p *gormPersistence) NextSeq(ctx context.Context, sessionId uuid.UUID) (int, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	max, err := uow.TurnRepository().MaxSeq(ctx, sessionId)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (p *gormPersistence) TouchSession(ctx context.Context, sessionId uuid.UUID, at time.Time) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	session.LastActivity = at
	return uow.SessionRepository().Update(ctx, session)
}

func (p *gormPersistence) ExpireSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil || session.Status == entity.SessionStatusExpired {
		return nil
	}
	session.Status = entity.SessionStatusExpired
	return uow.SessionRepository().Update(ctx, session)
}

func (p *gormPersistence) InactiveSessions(ctx context.Context, cutoff time.Time) ([]entity.Session, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.SessionRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.SessionStatusActive)},
		specification.LastActivityBefore{Cutoff: cutoff},
	)
	if err != nil {
		return nil, err
	}
	sessions := make([]entity.Session, len(rows))
	for i, row := range rows {
		sessions[i] = *row
	}
	return sessions, nil
}

func (p *gormPersistence) UpsertLongTerm(ctx context.Context, record *entity.LongTermRecord) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	return uow.LongTermRepository().Upsert(ctx, record)
}

func (p *gormPersistence) LongTerm(ctx context.Context, userId uuid.UUID) (*entity.LongTermRecord, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	return uow.LongTermRepository().FindByUserId(ctx, userId)
}

func (p *gormPersistence) AllLongTerm(ctx context.Context) ([]*entity.LongTermRecord, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	return uow.LongTermRepository().FindAll(ctx)
}
