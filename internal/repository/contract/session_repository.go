package contract

import (
	"context"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Update(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type TurnRepository interface {
	Create(ctx context.Context, turn *entity.ConversationTurn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error)
	MaxSeq(ctx context.Context, sessionId uuid.UUID) (int, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
