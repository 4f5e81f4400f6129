// Package evidence holds the types flowing between retrieval, specialists
// and fusion: source-tagged snippets, graph hits and citations.
package evidence

import "fmt"

// Evidence source names.
const (
	SourceKnowledgeBase  = "kb"
	SourceKnowledgeGraph = "graph"
)

// AllSources lists every evidence source the coordinator consults.
var AllSources = []string{SourceKnowledgeBase, SourceKnowledgeGraph}

// Citation points at the evidence backing a statement. Provenance is always
// explicit: Source is either kb or graph.
type Citation struct {
	Source    string `json:"source"`
	Reference string `json:"reference"` // documentId:page or node path
	Title     string `json:"title,omitempty"`
}

// Snippet is one knowledge-base hit. Hybrid is the combined
// w*semantic + (1-w)*keyword score used for ranking.
type Snippet struct {
	DocumentId string
	Title      string
	Content    string
	Category   string
	Page       int
	Semantic   float64
	Keyword    float64
	Hybrid     float64
}

func (s Snippet) Citation() Citation {
	return Citation{
		Source:    SourceKnowledgeBase,
		Reference: fmt.Sprintf("%s:%d", s.DocumentId, s.Page),
		Title:     s.Title,
	}
}

// GraphHit is one knowledge-graph traversal result. Shorter paths and higher
// property matches rank first.
type GraphHit struct {
	Node       string
	Kind       string
	Path       []string // relationship path from the query entity
	Properties map[string]interface{}
	Match      float64 // property match score in [0,1]
}

func (g GraphHit) Citation() Citation {
	ref := g.Node
	for _, rel := range g.Path {
		ref = ref + "/" + rel
	}
	return Citation{
		Source:    SourceKnowledgeGraph,
		Reference: ref,
		Title:     g.Node,
	}
}

// PathLen is the traversal depth at which the hit was found.
func (g GraphHit) PathLen() int { return len(g.Path) }

// PermissionFilter scopes retrieval for a role: only the listed KB
// categories and KG relationship types are visible. Applied at query time,
// never as post-hoc redaction.
type PermissionFilter struct {
	Categories    []string
	Relationships []string
}

// Result is the merged retrieval output. The two ranked lists are kept
// separate so provenance survives into the final citation list. Degraded
// names the sources that timed out or errored.
type Result struct {
	Snippets []Snippet
	Graph    []GraphHit
	Degraded []string
}

// Citations returns every citation in rank order, snippets first.
func (r Result) Citations() []Citation {
	out := make([]Citation, 0, len(r.Snippets)+len(r.Graph))
	for _, s := range r.Snippets {
		out = append(out, s.Citation())
	}
	for _, g := range r.Graph {
		out = append(out, g.Citation())
	}
	return out
}

// IsDegraded reports whether the named source degraded.
func (r Result) IsDegraded(source string) bool {
	for _, d := range r.Degraded {
		if d == source {
			return true
		}
	}
	return false
}

// FullyDegraded reports whether every source degraded, leaving no evidence
// at all to answer from.
func (r Result) FullyDegraded() bool {
	return len(r.Degraded) >= len(AllSources)
}
