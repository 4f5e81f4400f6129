// Package kg exposes the knowledge graph as a traversal collaborator:
// entities resolved from the query text, walked breadth-first over typed
// relationships up to a bounded depth.
package kg

import (
	"context"
	"fmt"
	"strings"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/repository/unitofwork"
	"restaurant-advisor-be/pkg/advisor/evidence"

	"github.com/google/uuid"
)

const DefaultMaxDepth = 2

type Service struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewService(uowFactory unitofwork.RepositoryFactory) *Service {
	return &Service{
		uowFactory: uowFactory,
	}
}

// Traverse resolves entity mentions in the query against node names, then
// walks outgoing edges breadth-first. Only the given relation types are
// followed (all types when empty), never deeper than maxDepth. Seed nodes
// come back with an empty path; an unresolvable query yields no hits, not
// an error.
func (s *Service) Traverse(ctx context.Context, query string, relations []string, maxDepth int) ([]evidence.GraphHit, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.GraphRepository()

	terms := queryTerms(query)
	seeds := make([]*entity.GraphNode, 0, 2)
	seen := make(map[uuid.UUID]bool)
	for _, candidate := range nameCandidates(query) {
		node, err := repo.FindNodeByName(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("resolve entity %q: %w", candidate, err)
		}
		if node != nil && !seen[node.Id] {
			seen[node.Id] = true
			seeds = append(seeds, node)
		}
	}
	if len(seeds) == 0 {
		return nil, nil
	}

	type frontierItem struct {
		node *entity.GraphNode
		path []string
	}

	hits := make([]evidence.GraphHit, 0, len(seeds))
	frontier := make([]frontierItem, 0, len(seeds))
	for _, seed := range seeds {
		hits = append(hits, toHit(seed, nil, terms))
		frontier = append(frontier, frontierItem{node: seed})
	}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		ids := make([]uuid.UUID, len(frontier))
		pathByFrom := make(map[uuid.UUID][]string, len(frontier))
		for i, item := range frontier {
			ids[i] = item.node.Id
			pathByFrom[item.node.Id] = item.path
		}

		edges, err := repo.EdgesFrom(ctx, ids, relations)
		if err != nil {
			return nil, fmt.Errorf("expand frontier: %w", err)
		}
		if len(edges) == 0 {
			break
		}

		targetIds := make([]uuid.UUID, 0, len(edges))
		for _, edge := range edges {
			if !seen[edge.ToNodeId] {
				targetIds = append(targetIds, edge.ToNodeId)
			}
		}
		targets, err := repo.FindNodesByIds(ctx, targetIds)
		if err != nil {
			return nil, fmt.Errorf("load frontier nodes: %w", err)
		}
		nodeById := make(map[uuid.UUID]*entity.GraphNode, len(targets))
		for _, node := range targets {
			nodeById[node.Id] = node
		}

		next := make([]frontierItem, 0, len(edges))
		for _, edge := range edges {
			node, ok := nodeById[edge.ToNodeId]
			if !ok || seen[node.Id] {
				continue
			}
			seen[node.Id] = true
			path := append(append([]string(nil), pathByFrom[edge.FromNodeId]...), edge.Relation)
			hits = append(hits, toHit(node, path, terms))
			next = append(next, frontierItem{node: node, path: path})
		}
		frontier = next
	}

	return hits, nil
}

func toHit(node *entity.GraphNode, path []string, terms []string) evidence.GraphHit {
	return evidence.GraphHit{
		Node:       node.Name,
		Kind:       node.Kind,
		Path:       path,
		Properties: node.Properties,
		Match:      propertyMatch(node, terms),
	}
}

// propertyMatch scores how much of the query vocabulary appears in the
// node's name and string properties.
func propertyMatch(node *entity.GraphNode, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	var sb strings.Builder
	sb.WriteString(strings.ToLower(node.Name))
	for _, v := range node.Properties {
		switch val := v.(type) {
		case string:
			sb.WriteString(" ")
			sb.WriteString(strings.ToLower(val))
		case []interface{}:
			for _, item := range val {
				if s, ok := item.(string); ok {
					sb.WriteString(" ")
					sb.WriteString(strings.ToLower(s))
				}
			}
		}
	}
	haystack := sb.String()
	matched := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

func queryTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 3 {
			out = append(out, f)
		}
	}
	return out
}

// nameCandidates yields unigram and bigram substrings of the query used for
// entity resolution, longest first so multi-word names win.
func nameCandidates(query string) []string {
	words := strings.Fields(strings.TrimSpace(query))
	var out []string
	for i := 0; i+1 < len(words); i++ {
		out = append(out, cleanWord(words[i])+" "+cleanWord(words[i+1]))
	}
	for _, w := range words {
		cleaned := cleanWord(w)
		if len(cleaned) >= 3 {
			out = append(out, cleaned)
		}
	}
	return out
}

func cleanWord(w string) string {
	return strings.Trim(w, ".,:;!?\"'()")
}
