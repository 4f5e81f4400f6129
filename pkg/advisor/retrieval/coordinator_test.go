package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"restaurant-advisor-be/internal/pkg/logger"
	"restaurant-advisor-be/pkg/advisor/evidence"
)

type fakeKB struct {
	snippets []evidence.Snippet
	err      error
	delay    time.Duration
	calls    int
}

func (f *fakeKB) Search(ctx context.Context, query string, categories []string, k int) ([]evidence.Snippet, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.snippets, nil
}

type fakeKG struct {
	hits  []evidence.GraphHit
	err   error
	delay time.Duration
	calls int
}

func (f *fakeKG) Traverse(ctx context.Context, query string, relations []string, maxDepth int) ([]evidence.GraphHit, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func newTestCoordinator(t *testing.T, kb KnowledgeBase, kg KnowledgeGraph, opts ...Option) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(kb, kg, logger.NewNopLogger(), opts...)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	return c
}

func TestRetrieveMergesBothSources(t *testing.T) {
	kb := &fakeKB{snippets: []evidence.Snippet{
		{DocumentId: "d1", Content: "commercial rents in T Nagar Chennai", Semantic: 0.9},
	}}
	kg := &fakeKG{hits: []evidence.GraphHit{
		{Node: "T Nagar", Path: []string{"LOCATED_IN"}, Match: 0.8},
	}}
	c := newTestCoordinator(t, kb, kg)

	result, err := c.Retrieve(context.Background(), "rent in T Nagar Chennai", evidence.PermissionFilter{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(result.Snippets) != 1 || len(result.Graph) != 1 {
		t.Fatalf("snippets=%d graph=%d, want 1/1", len(result.Snippets), len(result.Graph))
	}
	if len(result.Degraded) != 0 {
		t.Fatalf("degraded = %v, want none", result.Degraded)
	}
}

func TestRetrieveGraphTimeoutDegrades(t *testing.T) {
	kb := &fakeKB{snippets: []evidence.Snippet{{DocumentId: "d1", Content: "zoning rules", Semantic: 0.7}}}
	kg := &fakeKG{delay: 200 * time.Millisecond}
	c := newTestCoordinator(t, kb, kg, WithSourceTimeout(20*time.Millisecond))

	result, err := c.Retrieve(context.Background(), "zoning rules", evidence.PermissionFilter{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(result.Snippets) != 1 {
		t.Fatalf("snippets = %d, want 1", len(result.Snippets))
	}
	if !result.IsDegraded(evidence.SourceKnowledgeGraph) {
		t.Fatal("graph source not flagged degraded")
	}
	if result.IsDegraded(evidence.SourceKnowledgeBase) {
		t.Fatal("kb source wrongly flagged degraded")
	}
	if len(result.Graph) != 0 {
		t.Fatalf("graph hits = %d, want none", len(result.Graph))
	}
}

func TestRetrieveAllSourcesDegraded(t *testing.T) {
	kb := &fakeKB{err: errors.New("connection refused")}
	kg := &fakeKG{err: errors.New("connection refused")}
	c := newTestCoordinator(t, kb, kg)

	result, err := c.Retrieve(context.Background(), "anything", evidence.PermissionFilter{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(result.Snippets) != 0 || len(result.Graph) != 0 {
		t.Fatal("expected empty result")
	}
	if !result.IsDegraded(evidence.SourceKnowledgeBase) || !result.IsDegraded(evidence.SourceKnowledgeGraph) {
		t.Fatalf("degraded = %v, want both sources", result.Degraded)
	}
}

func TestHybridRanking(t *testing.T) {
	// d2 has lower semantic but full keyword overlap; with w=0.5 it outranks d1.
	kb := &fakeKB{snippets: []evidence.Snippet{
		{DocumentId: "d1", Content: "unrelated text", Semantic: 0.8},
		{DocumentId: "d2", Content: "italian restaurant mumbai", Semantic: 0.6},
	}}
	kg := &fakeKG{}
	c := newTestCoordinator(t, kb, kg, WithSemanticWeight(0.5))

	result, err := c.Retrieve(context.Background(), "italian restaurant mumbai", evidence.PermissionFilter{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(result.Snippets) != 2 {
		t.Fatalf("snippets = %d, want 2", len(result.Snippets))
	}
	if result.Snippets[0].DocumentId != "d2" {
		t.Errorf("top snippet = %s, want d2", result.Snippets[0].DocumentId)
	}
	top := result.Snippets[0]
	if top.Keyword != 1.0 {
		t.Errorf("keyword overlap = %v, want 1.0", top.Keyword)
	}
	want := 0.5*0.6 + 0.5*1.0
	if top.Hybrid != want {
		t.Errorf("hybrid = %v, want %v", top.Hybrid, want)
	}
}

func TestGraphRankingPathThenMatch(t *testing.T) {
	kb := &fakeKB{}
	kg := &fakeKG{hits: []evidence.GraphHit{
		{Node: "far", Path: []string{"NEAR", "NEAR"}, Match: 0.9},
		{Node: "weak", Path: []string{"NEAR"}, Match: 0.2},
		{Node: "close", Path: []string{"NEAR"}, Match: 0.7},
	}}
	c := newTestCoordinator(t, kb, kg)

	result, err := c.Retrieve(context.Background(), "nearby", evidence.PermissionFilter{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	got := []string{result.Graph[0].Node, result.Graph[1].Node, result.Graph[2].Node}
	want := []string{"close", "weak", "far"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("graph order = %v, want %v", got, want)
		}
	}
}

func TestNewCoordinatorRejectsBadWeight(t *testing.T) {
	_, err := NewCoordinator(&fakeKB{}, &fakeKG{}, logger.NewNopLogger(), WithSemanticWeight(1.5))
	if err == nil {
		t.Fatal("expected error for weight outside [0,1]")
	}
}
