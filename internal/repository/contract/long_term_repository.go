package contract

import (
	"context"

	"restaurant-advisor-be/internal/entity"

	"github.com/google/uuid"
)

// LongTermRepository persists per-user memory records. Upsert replaces the
// whole row; callers serialize merges per user so no update is lost.
type LongTermRepository interface {
	Upsert(ctx context.Context, record *entity.LongTermRecord) error
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.LongTermRecord, error)
	FindAll(ctx context.Context) ([]*entity.LongTermRecord, error)
}
