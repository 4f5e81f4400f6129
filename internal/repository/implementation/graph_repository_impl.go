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
)

type GraphRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewGraphRepository(db *gorm.DB) contract.GraphRepository {
	return &GraphRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *GraphRepositoryImpl) CreateNode(ctx context.Context, node *entity.GraphNode) error {
	m := r.mapper.NodeToModel(node)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*node = *r.mapper.NodeToEntity(m)
	return nil
}

func (r *GraphRepositoryImpl) CreateEdge(ctx context.Context, edge *entity.GraphEdge) error {
	m := r.mapper.EdgeToModel(edge)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*edge = *r.mapper.EdgeToEntity(m)
	return nil
}

func (r *GraphRepositoryImpl) FindNodeByName(ctx context.Context, name string) (*entity.GraphNode, error) {
	var m model.GraphNode
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.NodeToEntity(&m), nil
}

func (r *GraphRepositoryImpl) FindNodesByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.GraphNode, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []*model.GraphNode
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GraphNode, len(models))
	for i, m := range models {
		entities[i] = r.mapper.NodeToEntity(m)
	}
	return entities, nil
}

func (r *GraphRepositoryImpl) EdgesFrom(ctx context.Context, nodeIds []uuid.UUID, relations []string) ([]*entity.GraphEdge, error) {
	if len(nodeIds) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).Where("from_node_id IN ?", nodeIds)
	if len(relations) > 0 {
		query = query.Where("relation IN ?", relations)
	}
	var models []*model.GraphEdge
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GraphEdge, len(models))
	for i, m := range models {
		entities[i] = r.mapper.EdgeToEntity(m)
	}
	return entities, nil
}

func (r *GraphRepositoryImpl) CountNodes(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GraphNode{}).Count(&count).Error
	return count, err
}
