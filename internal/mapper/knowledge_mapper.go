package mapper

import (
	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/model"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) DocumentToEntity(d *model.KnowledgeDocument) *entity.KnowledgeDocument {
	if d == nil {
		return nil
	}
	return &entity.KnowledgeDocument{
		Id:        d.Id,
		Title:     d.Title,
		Content:   d.Content,
		Category:  d.Category,
		SourceRef: d.SourceRef,
		Page:      d.Page,
		CreatedAt: d.CreatedAt,
	}
}

func (m *KnowledgeMapper) DocumentToModel(d *entity.KnowledgeDocument) *model.KnowledgeDocument {
	if d == nil {
		return nil
	}
	return &model.KnowledgeDocument{
		Id:        d.Id,
		Title:     d.Title,
		Content:   d.Content,
		Category:  d.Category,
		SourceRef: d.SourceRef,
		Page:      d.Page,
		CreatedAt: d.CreatedAt,
	}
}

func (m *KnowledgeMapper) NodeToEntity(n *model.GraphNode) *entity.GraphNode {
	if n == nil {
		return nil
	}
	return &entity.GraphNode{
		Id:         n.Id,
		Name:       n.Name,
		Kind:       n.Kind,
		Properties: n.Properties,
		CreatedAt:  n.CreatedAt,
	}
}

func (m *KnowledgeMapper) NodeToModel(n *entity.GraphNode) *model.GraphNode {
	if n == nil {
		return nil
	}
	return &model.GraphNode{
		Id:         n.Id,
		Name:       n.Name,
		Kind:       n.Kind,
		Properties: n.Properties,
		CreatedAt:  n.CreatedAt,
	}
}

func (m *KnowledgeMapper) EdgeToEntity(e *model.GraphEdge) *entity.GraphEdge {
	if e == nil {
		return nil
	}
	return &entity.GraphEdge{
		Id:         e.Id,
		FromNodeId: e.FromNodeId,
		ToNodeId:   e.ToNodeId,
		Relation:   e.Relation,
		Properties: e.Properties,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *KnowledgeMapper) EdgeToModel(e *entity.GraphEdge) *model.GraphEdge {
	if e == nil {
		return nil
	}
	return &model.GraphEdge{
		Id:         e.Id,
		FromNodeId: e.FromNodeId,
		ToNodeId:   e.ToNodeId,
		Relation:   e.Relation,
		Properties: e.Properties,
		CreatedAt:  e.CreatedAt,
	}
}
