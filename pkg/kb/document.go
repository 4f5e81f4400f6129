package kb

import (
	"time"

	"restaurant-advisor-be/internal/entity"

	"github.com/google/uuid"
)

func newDocument(title, content, category, sourceRef string, page int) *entity.KnowledgeDocument {
	return &entity.KnowledgeDocument{
		Id:        uuid.New(),
		Title:     title,
		Content:   content,
		Category:  category,
		SourceRef: sourceRef,
		Page:      page,
		CreatedAt: time.Now(),
	}
}
