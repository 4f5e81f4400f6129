// Package orchestrator sequences a query through routing, permission
// gating, evidence retrieval, specialist execution, optional fusion and
// response composition. It is the only place that mutates conversational
// memory: a query is either recorded whole or not at all.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/pkg/logger"
	"restaurant-advisor-be/pkg/advisor/errs"
	"restaurant-advisor-be/pkg/advisor/evidence"
	"restaurant-advisor-be/pkg/advisor/fusion"
	"restaurant-advisor-be/pkg/advisor/permission"
	"restaurant-advisor-be/pkg/advisor/router"
	"restaurant-advisor-be/pkg/advisor/specialist"

	"github.com/google/uuid"
)

const (
	DefaultContextTurns      = 3
	DefaultGenerationTimeout = 60 * time.Second
)

// Directory resolves users and sessions. Session returns nil for an unknown
// id; CreateSession issues a fresh active session for the user.
type Directory interface {
	User(ctx context.Context, userId uuid.UUID) (*entity.User, error)
	Session(ctx context.Context, sessionId uuid.UUID) (*entity.Session, error)
	CreateSession(ctx context.Context, userId uuid.UUID) (*entity.Session, error)
}

// Memory is the slice of the memory store the orchestrator needs.
type Memory interface {
	AppendTurn(ctx context.Context, sessionId uuid.UUID, turn entity.ConversationTurn) error
	Context(ctx context.Context, sessionId uuid.UUID, n int) ([]entity.ConversationTurn, error)
	LongTerm(ctx context.Context, userId uuid.UUID) (*entity.LongTermRecord, error)
	ExpireInactive(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// Retriever fans the query out to the evidence sources.
type Retriever interface {
	Retrieve(ctx context.Context, query string, filter evidence.PermissionFilter) (*evidence.Result, error)
}

// Runner executes one specialist against pre-retrieved evidence.
type Runner interface {
	Run(ctx context.Context, desc specialist.Descriptor, input specialist.Input) (specialist.Output, error)
}

// Result is what a completed query hands back to the front end.
type Result struct {
	SessionId       uuid.UUID             `json:"session_id"`
	Outcome         Outcome               `json:"outcome"`
	AnswerText      string                `json:"answer_text"`
	Citations       []evidence.Citation   `json:"citations"`
	SpecialistsRun  []string              `json:"specialists_run"`
	Denials         []permission.Denial   `json:"denials,omitempty"`
	DegradedSources []string              `json:"degraded_sources,omitempty"`
	Ambiguous       bool                  `json:"ambiguous,omitempty"`
	Opportunity     *fusion.OpportunityScore `json:"opportunity,omitempty"`
}

type Orchestrator struct {
	directory Directory
	router    *router.Router
	table     *permission.Table
	memory    Memory
	retriever Retriever
	runner    Runner
	log       logger.ILogger

	fusionWeights fusion.Weights
	contextTurns  int
	genTimeout    time.Duration
}

type Option func(*Orchestrator)

func WithFusionWeights(w fusion.Weights) Option {
	return func(o *Orchestrator) { o.fusionWeights = w }
}

func WithContextTurns(n int) Option {
	return func(o *Orchestrator) { o.contextTurns = n }
}

func WithGenerationTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.genTimeout = d }
}

func New(
	directory Directory,
	rt *router.Router,
	table *permission.Table,
	mem Memory,
	retriever Retriever,
	runner Runner,
	log logger.ILogger,
	opts ...Option,
) (*Orchestrator, error) {
	o := &Orchestrator{
		directory:     directory,
		router:        rt,
		table:         table,
		memory:        mem,
		retriever:     retriever,
		runner:        runner,
		log:           log,
		fusionWeights: fusion.DefaultWeights,
		contextTurns:  DefaultContextTurns,
		genTimeout:    DefaultGenerationTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.fusionWeights.Validate(); err != nil {
		return nil, err
	}
	if o.contextTurns < 0 {
		return nil, errs.InvalidConfiguration("context turns %d is negative", o.contextTurns)
	}
	return o, nil
}

// HandleQuery drives one query through the state machine. Denied and
// erroring queries return an explanatory Result and leave memory untouched;
// only fully composed turns are appended.
func (o *Orchestrator) HandleQuery(ctx context.Context, userId, sessionId uuid.UUID, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errs.ErrInvalidQuery
	}

	// Init
	user, session, err := o.initState(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	// Route
	history, err := o.memory.Context(ctx, session.Id, o.contextTurns)
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}
	decision := o.router.Route(query, history)
	o.log.Debug("orchestrator", "routed query", map[string]interface{}{
		"session_id":  session.Id,
		"specialists": decision.Domains(),
		"ambiguous":   decision.Ambiguous,
	})

	// PermissionCheck
	permitted, denials, err := o.table.Filter(user.Role, decision)
	if err != nil {
		return nil, err
	}
	if len(permitted) == 0 {
		return o.deny(session.Id, decision, denials), nil
	}

	// Retrieve
	filter := o.table.RetrievalFilter(permitted)
	result, err := o.retriever.Retrieve(ctx, query, filter)
	if err != nil {
		return nil, fmt.Errorf("retrieve evidence: %w", err)
	}
	if result.FullyDegraded() {
		return o.allSourcesDown(session.Id, permitted, denials, result), nil
	}

	record, err := o.memory.LongTerm(ctx, user.Id)
	if err != nil {
		return nil, fmt.Errorf("load long-term record: %w", err)
	}

	// RunSpecialists
	outputs, failed := o.runSpecialists(ctx, permitted, specialist.Input{
		Query:       query,
		Evidence:    result,
		Context:     history,
		Preferences: record.Preferences,
	})
	if len(outputs) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: no specialist completed", errs.ErrCollaboratorUnavailable)
	}

	// Fuse
	var opportunity *fusion.OpportunityScore
	if needsFusion(permitted) {
		score, err := o.fuse(query, record, result)
		if err != nil {
			return nil, err
		}
		opportunity = score
	}

	// Compose
	res := o.compose(session.Id, query, decision, permitted, denials, failed, outputs, result, opportunity)

	// A cancelled caller means no turn is recorded: the query either fully
	// completes and lands in memory, or it is entirely absent.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	turn := entity.ConversationTurn{
		Query:       query,
		Response:    res.AnswerText,
		Specialists: res.SpecialistsRun,
	}
	if err := o.memory.AppendTurn(ctx, session.Id, turn); err != nil {
		return nil, fmt.Errorf("append turn: %w", err)
	}
	return res, nil
}

// initState expires idle sessions, then loads the user and a usable
// session. An expired or absent session id yields a fresh session; an
// unknown non-nil id is invalid.
func (o *Orchestrator) initState(ctx context.Context, userId, sessionId uuid.UUID) (*entity.User, *entity.Session, error) {
	if _, err := o.memory.ExpireInactive(ctx, time.Now()); err != nil {
		o.log.Warn("orchestrator", "expiry sweep failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	user, err := o.directory.User(ctx, userId)
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, nil, errs.ErrSessionInvalid
	}

	if sessionId == uuid.Nil {
		session, err := o.directory.CreateSession(ctx, userId)
		if err != nil {
			return nil, nil, fmt.Errorf("create session: %w", err)
		}
		return user, session, nil
	}

	session, err := o.directory.Session(ctx, sessionId)
	if err != nil {
		return nil, nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, nil, errs.ErrSessionInvalid
	}
	if session.UserId != userId {
		return nil, nil, errs.ErrSessionInvalid
	}
	if session.Status == entity.SessionStatusExpired {
		fresh, err := o.directory.CreateSession(ctx, userId)
		if err != nil {
			return nil, nil, fmt.Errorf("create session: %w", err)
		}
		return user, fresh, nil
	}
	return user, session, nil
}

// runSpecialists executes the permitted specialists concurrently, each
// under the generation timeout. A failing specialist degrades to a notice
// instead of failing the query; order of outputs follows priority.
func (o *Orchestrator) runSpecialists(ctx context.Context, permitted []specialist.Descriptor, input specialist.Input) ([]specialist.Output, []string) {
	type slot struct {
		output specialist.Output
		err    error
	}
	slots := make([]slot, len(permitted))
	done := make(chan int, len(permitted))

	for i, desc := range permitted {
		go func(i int, desc specialist.Descriptor) {
			runCtx, cancel := context.WithTimeout(ctx, o.genTimeout)
			defer cancel()
			out, err := o.runner.Run(runCtx, desc, input)
			slots[i] = slot{output: out, err: err}
			done <- i
		}(i, desc)
	}
	for range permitted {
		<-done
	}

	outputs := make([]specialist.Output, 0, len(permitted))
	var failed []string
	for i, s := range slots {
		if s.err != nil {
			failed = append(failed, permitted[i].Domain)
			o.log.Warn("orchestrator", "specialist failed", map[string]interface{}{
				"domain": permitted[i].Domain,
				"error":  s.err.Error(),
			})
			continue
		}
		outputs = append(outputs, s.output)
	}
	return outputs, failed
}

// needsFusion reports whether the permitted set calls for composite
// opportunity scoring: a location query combined with market or financial
// analysis.
func needsFusion(permitted []specialist.Descriptor) bool {
	domains := make(map[string]bool, len(permitted))
	for _, d := range permitted {
		domains[d.Domain] = true
	}
	return domains[constant.DomainLocation] && (domains[constant.DomainMarket] || domains[constant.DomainFinancial])
}

// fuse derives the four sub-scores from the retrieved evidence and the
// user's remembered cuisine, anchored on the best-matching graph area.
func (o *Orchestrator) fuse(query string, record *entity.LongTermRecord, result *evidence.Result) (*fusion.OpportunityScore, error) {
	area := ""
	for _, hit := range result.Graph {
		if hit.PathLen() == 0 {
			area = hit.Node
			break
		}
	}
	if area == "" && len(result.Graph) > 0 {
		area = result.Graph[0].Node
	}

	cuisine := ""
	if pref, ok := record.Preferences["cuisine"]; ok {
		cuisine = pref.Value
	}

	scores := fusion.SubScores{
		Location:   fusion.LocationSubScore(result.Graph, area),
		Uniqueness: fusion.UniquenessSubScore(result.Graph, area, cuisine),
		Sentiment:  fusion.SentimentSubScore(result.Snippets),
		Regulatory: fusion.RegulatorySubScore(result.Graph),
	}
	score, err := fusion.Score(scores, o.fusionWeights)
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (o *Orchestrator) deny(sessionId uuid.UUID, decision router.Decision, denials []permission.Denial) *Result {
	var sb strings.Builder
	sb.WriteString("This request cannot be answered at your access level.\n")
	for _, d := range denials {
		fmt.Fprintf(&sb, "- The %s specialist requires the %s role.\n", d.Domain, d.RequiredRole)
	}
	sb.WriteString("Upgrade your plan or rephrase the question within your current access.")

	return &Result{
		SessionId:  sessionId,
		Outcome:    OutcomeDenied,
		AnswerText: sb.String(),
		Denials:    denials,
		Ambiguous:  decision.Ambiguous,
	}
}

func (o *Orchestrator) allSourcesDown(sessionId uuid.UUID, permitted []specialist.Descriptor, denials []permission.Denial, result *evidence.Result) *Result {
	domains := make([]string, len(permitted))
	for i, d := range permitted {
		domains[i] = d.Domain
	}
	return &Result{
		SessionId:       sessionId,
		Outcome:         OutcomeError,
		AnswerText:      "I'm sorry - every evidence source is currently unavailable, so I cannot give you a grounded answer. Please try again shortly.",
		DegradedSources: result.Degraded,
		Denials:         denials,
		SpecialistsRun:  nil,
		Citations:       nil,
		Opportunity:     nil,
		Ambiguous:       false,
	}
}

func (o *Orchestrator) compose(
	sessionId uuid.UUID,
	query string,
	decision router.Decision,
	permitted []specialist.Descriptor,
	denials []permission.Denial,
	failed []string,
	outputs []specialist.Output,
	result *evidence.Result,
	opportunity *fusion.OpportunityScore,
) *Result {
	var sb strings.Builder

	if decision.Ambiguous {
		sb.WriteString("Note: the question did not match a clear specialty, so this is a general answer with lower confidence.\n\n")
	}

	for _, out := range outputs {
		if len(outputs) > 1 {
			fmt.Fprintf(&sb, "## %s\n\n", titleCase(out.Domain))
		}
		sb.WriteString(strings.TrimSpace(out.Text))
		sb.WriteString("\n\n")
	}

	if opportunity != nil {
		fmt.Fprintf(&sb, "## Opportunity Score\n\n%.2f - %s\n", opportunity.Total, opportunity.Interpretation())
		fmt.Fprintf(&sb, "(location %.2f, uniqueness %.2f, sentiment %.2f, regulatory ease %.2f)\n\n",
			opportunity.SubScores.Location.Value,
			opportunity.SubScores.Uniqueness.Value,
			opportunity.SubScores.Sentiment.Value,
			opportunity.SubScores.Regulatory.Value,
		)
	}

	for _, d := range denials {
		fmt.Fprintf(&sb, "Note: the %s perspective was omitted; it requires the %s role.\n", d.Domain, d.RequiredRole)
	}
	for _, domain := range failed {
		fmt.Fprintf(&sb, "Note: the %s specialist was unavailable for this answer.\n", domain)
	}
	for _, source := range result.Degraded {
		fmt.Fprintf(&sb, "Note: the %s evidence source was unavailable; this answer is based on partial evidence.\n", sourceLabel(source))
	}

	specialists := make([]string, len(outputs))
	for i, out := range outputs {
		specialists[i] = out.Domain
	}

	return &Result{
		SessionId:       sessionId,
		Outcome:         OutcomeSuccess,
		AnswerText:      strings.TrimSpace(sb.String()),
		Citations:       result.Citations(),
		SpecialistsRun:  specialists,
		Denials:         denials,
		DegradedSources: result.Degraded,
		Ambiguous:       decision.Ambiguous,
		Opportunity:     opportunity,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sourceLabel(source string) string {
	switch source {
	case evidence.SourceKnowledgeBase:
		return "document knowledge base"
	case evidence.SourceKnowledgeGraph:
		return "knowledge graph"
	default:
		return source
	}
}
