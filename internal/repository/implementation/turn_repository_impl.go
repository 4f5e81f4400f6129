package implementation

import (
	"context"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/mapper"
	"restaurant-advisor-be/internal/model"
	"restaurant-advisor-be/internal/repository/contract"
	"restaurant-advisor-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AdvisorMapper
}

func NewTurnRepository(db *gorm.DB) contract.TurnRepository {
	return &TurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewAdvisorMapper(),
	}
}

func (r *TurnRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TurnRepositoryImpl) Create(ctx context.Context, turn *entity.ConversationTurn) error {
	m := r.mapper.TurnToModel(turn)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*turn = *r.mapper.TurnToEntity(m)
	return nil
}

func (r *TurnRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error) {
	var models []*model.ConversationTurn
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ConversationTurn, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TurnToEntity(m)
	}
	return entities, nil
}

func (r *TurnRepositoryImpl) MaxSeq(ctx context.Context, sessionId uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&model.ConversationTurn{}).
		Select("MAX(seq)").
		Where("session_id = ?", sessionId).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *TurnRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ConversationTurn{}).Error
}
