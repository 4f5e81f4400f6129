// Package retrieval fans a query out to the evidence sources concurrently
// and merges what comes back, tolerating per-source failure.
package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"restaurant-advisor-be/internal/pkg/logger"
	"restaurant-advisor-be/pkg/advisor/errs"
	"restaurant-advisor-be/pkg/advisor/evidence"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultSourceTimeout  = 5 * time.Second
	DefaultSemanticWeight = 0.7
	DefaultLimit          = 5
	DefaultCacheTTL       = 2 * time.Minute
)

// KnowledgeBase is the unstructured evidence source. Snippets come back
// with Semantic populated; the coordinator owns keyword and hybrid scoring.
type KnowledgeBase interface {
	Search(ctx context.Context, query string, categories []string, k int) ([]evidence.Snippet, error)
}

// KnowledgeGraph is the structured evidence source. Hits come back with
// Path and Match populated.
type KnowledgeGraph interface {
	Traverse(ctx context.Context, query string, relations []string, maxDepth int) ([]evidence.GraphHit, error)
}

type Coordinator struct {
	kb    KnowledgeBase
	kg    KnowledgeGraph
	cache *redis.Client
	log   logger.ILogger

	timeout        time.Duration
	semanticWeight float64
	limit          int
	maxDepth       int
	cacheTTL       time.Duration
}

type Option func(*Coordinator)

func WithSourceTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

func WithSemanticWeight(w float64) Option {
	return func(c *Coordinator) { c.semanticWeight = w }
}

func WithLimit(limit int) Option {
	return func(c *Coordinator) { c.limit = limit }
}

func WithMaxDepth(depth int) Option {
	return func(c *Coordinator) { c.maxDepth = depth }
}

// WithCache enables transparent result caching. Only fully healthy results
// are cached; degraded ones are always recomputed.
func WithCache(client *redis.Client, ttl time.Duration) Option {
	return func(c *Coordinator) {
		c.cache = client
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

func NewCoordinator(kb KnowledgeBase, kg KnowledgeGraph, log logger.ILogger, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		kb:             kb,
		kg:             kg,
		log:            log,
		timeout:        DefaultSourceTimeout,
		semanticWeight: DefaultSemanticWeight,
		limit:          DefaultLimit,
		maxDepth:       2,
		cacheTTL:       DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.semanticWeight < 0 || c.semanticWeight > 1 {
		return nil, errs.InvalidConfiguration("semantic weight %v outside [0,1]", c.semanticWeight)
	}
	if c.timeout <= 0 {
		return nil, errs.InvalidConfiguration("source timeout %v must be positive", c.timeout)
	}
	return c, nil
}

// Retrieve queries both sources concurrently, each under its own deadline
// and scoped by the permission filter. A source that times out or errors is
// recorded in Degraded and its half of the result is simply absent; the
// request never fails because one source is down. When every source
// degrades the result is empty with both sources flagged.
func (c *Coordinator) Retrieve(ctx context.Context, query string, filter evidence.PermissionFilter) (*evidence.Result, error) {
	if cached := c.fromCache(ctx, query, filter); cached != nil {
		return cached, nil
	}

	type kbOut struct {
		snippets []evidence.Snippet
		err      error
	}
	type kgOut struct {
		hits []evidence.GraphHit
		err  error
	}

	kbCh := make(chan kbOut, 1)
	kgCh := make(chan kgOut, 1)

	go func() {
		sourceCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		snippets, err := c.kb.Search(sourceCtx, query, filter.Categories, c.limit)
		kbCh <- kbOut{snippets: snippets, err: err}
	}()

	go func() {
		sourceCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		hits, err := c.kg.Traverse(sourceCtx, query, filter.Relationships, c.maxDepth)
		kgCh <- kgOut{hits: hits, err: err}
	}()

	kb := <-kbCh
	kg := <-kgCh

	result := &evidence.Result{}

	if kb.err != nil {
		result.Degraded = append(result.Degraded, evidence.SourceKnowledgeBase)
		c.logDegraded(evidence.SourceKnowledgeBase, kb.err)
	} else {
		result.Snippets = c.rankSnippets(query, kb.snippets)
	}

	if kg.err != nil {
		result.Degraded = append(result.Degraded, evidence.SourceKnowledgeGraph)
		c.logDegraded(evidence.SourceKnowledgeGraph, kg.err)
	} else {
		result.Graph = rankGraphHits(kg.hits)
	}

	if len(result.Degraded) == 0 {
		c.toCache(ctx, query, filter, result)
	}
	return result, nil
}

// rankSnippets computes keyword overlap against the query, combines it with
// the semantic score and sorts by the hybrid score descending. Ties break on
// document id so ranking is reproducible.
func (c *Coordinator) rankSnippets(query string, snippets []evidence.Snippet) []evidence.Snippet {
	terms := tokenize(query)
	ranked := make([]evidence.Snippet, len(snippets))
	for i, s := range snippets {
		s.Keyword = keywordOverlap(terms, s.Content)
		s.Hybrid = c.semanticWeight*s.Semantic + (1-c.semanticWeight)*s.Keyword
		ranked[i] = s
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Hybrid != ranked[j].Hybrid {
			return ranked[i].Hybrid > ranked[j].Hybrid
		}
		return ranked[i].DocumentId < ranked[j].DocumentId
	})
	return ranked
}

// rankGraphHits orders by path length ascending, then property match
// descending, then node name.
func rankGraphHits(hits []evidence.GraphHit) []evidence.GraphHit {
	ranked := make([]evidence.GraphHit, len(hits))
	copy(ranked, hits)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].PathLen() != ranked[j].PathLen() {
			return ranked[i].PathLen() < ranked[j].PathLen()
		}
		if ranked[i].Match != ranked[j].Match {
			return ranked[i].Match > ranked[j].Match
		}
		return ranked[i].Node < ranked[j].Node
	})
	return ranked
}

func (c *Coordinator) logDegraded(source string, err error) {
	category := errs.ErrCollaboratorUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		category = errs.ErrCollaboratorTimeout
	}
	c.log.Warn("retrieval", "evidence source degraded", map[string]interface{}{
		"source":   source,
		"category": category.Error(),
		"error":    err.Error(),
	})
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
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

// keywordOverlap is the fraction of query terms present in the content.
func keywordOverlap(terms []string, content string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lowered := strings.ToLower(content)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

func (c *Coordinator) cacheKey(query string, filter evidence.PermissionFilter) string {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(filter.Categories, ",")))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(filter.Relationships, ",")))
	return "retrieval:" + hex.EncodeToString(h.Sum(nil))
}

func (c *Coordinator) fromCache(ctx context.Context, query string, filter evidence.PermissionFilter) *evidence.Result {
	if c.cache == nil {
		return nil
	}
	data, err := c.cache.Get(ctx, c.cacheKey(query, filter)).Bytes()
	if err != nil {
		return nil
	}
	var result evidence.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

func (c *Coordinator) toCache(ctx context.Context, query string, filter evidence.PermissionFilter, result *evidence.Result) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, c.cacheKey(query, filter), data, c.cacheTTL).Err(); err != nil {
		c.log.Debug("retrieval", "cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
