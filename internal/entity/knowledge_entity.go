package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeDocument is one ingested document chunk in the knowledge base.
type KnowledgeDocument struct {
	Id        uuid.UUID
	Title     string
	Content   string
	Category  string
	SourceRef string
	Page      int
	CreatedAt time.Time
}

// GraphNode is an entity in the knowledge graph (city, area, cuisine,
// regulation). Properties carry numeric and list attributes such as
// foot_traffic, competition_score, popular_cuisines.
type GraphNode struct {
	Id         uuid.UUID
	Name       string
	Kind       string
	Properties map[string]interface{}
	CreatedAt  time.Time
}

// GraphEdge is a typed, weighted relationship between two nodes.
type GraphEdge struct {
	Id         uuid.UUID
	FromNodeId uuid.UUID
	ToNodeId   uuid.UUID
	Relation   string
	Properties map[string]interface{}
	CreatedAt  time.Time
}
