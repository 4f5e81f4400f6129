package contract

import (
	"context"

	"restaurant-advisor-be/internal/entity"

	"github.com/google/uuid"
)

// GraphRepository stores the knowledge graph as node and edge tables.
// Traversal walks edges breadth-first with a relation-type filter.
type GraphRepository interface {
	CreateNode(ctx context.Context, node *entity.GraphNode) error
	CreateEdge(ctx context.Context, edge *entity.GraphEdge) error
	FindNodeByName(ctx context.Context, name string) (*entity.GraphNode, error)
	FindNodesByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.GraphNode, error)
	// EdgesFrom returns outgoing edges of the given nodes whose relation is
	// in relations (all relations when empty).
	EdgesFrom(ctx context.Context, nodeIds []uuid.UUID, relations []string) ([]*entity.GraphEdge, error)
	CountNodes(ctx context.Context) (int64, error)
}
