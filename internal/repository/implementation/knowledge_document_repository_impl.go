package implementation

import (
	"context"
	"errors"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/mapper"
	"restaurant-advisor-be/internal/model"
	"restaurant-advisor-be/internal/repository/contract"
	"restaurant-advisor-be/internal/repository/specification"

	"gorm.io/gorm"
)

type KnowledgeDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeDocumentRepository(db *gorm.DB) contract.KnowledgeDocumentRepository {
	return &KnowledgeDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KnowledgeDocumentRepositoryImpl) Create(ctx context.Context, doc *entity.KnowledgeDocument) error {
	m := r.mapper.DocumentToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.DocumentToEntity(m)
	return nil
}

func (r *KnowledgeDocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeDocument, error) {
	var m model.KnowledgeDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DocumentToEntity(&m), nil
}

func (r *KnowledgeDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeDocument, error) {
	var models []*model.KnowledgeDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KnowledgeDocument, len(models))
	for i, m := range models {
		entities[i] = r.mapper.DocumentToEntity(m)
	}
	return entities, nil
}

func (r *KnowledgeDocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.KnowledgeDocument{}).Count(&count).Error
	return count, err
}
