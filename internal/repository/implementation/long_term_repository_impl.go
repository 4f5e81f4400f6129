package implementation

import (
	"context"
	"errors"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/mapper"
	"restaurant-advisor-be/internal/model"
	"restaurant-advisor-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LongTermRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AdvisorMapper
}

func NewLongTermRepository(db *gorm.DB) contract.LongTermRepository {
	return &LongTermRepositoryImpl{
		db:     db,
		mapper: mapper.NewAdvisorMapper(),
	}
}

func (r *LongTermRepositoryImpl) Upsert(ctx context.Context, record *entity.LongTermRecord) error {
	m := r.mapper.LongTermToModel(record)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(m).Error
	if err != nil {
		return err
	}
	*record = *r.mapper.LongTermToEntity(m)
	return nil
}

func (r *LongTermRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.LongTermRecord, error) {
	var m model.LongTermRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LongTermToEntity(&m), nil
}

func (r *LongTermRepositoryImpl) FindAll(ctx context.Context) ([]*entity.LongTermRecord, error) {
	var models []*model.LongTermRecord
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.LongTermRecord, len(models))
	for i, m := range models {
		entities[i] = r.mapper.LongTermToEntity(m)
	}
	return entities, nil
}
