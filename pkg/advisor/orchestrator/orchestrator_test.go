package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/pkg/logger"
	"restaurant-advisor-be/pkg/advisor/errs"
	"restaurant-advisor-be/pkg/advisor/evidence"
	"restaurant-advisor-be/pkg/advisor/permission"
	"restaurant-advisor-be/pkg/advisor/router"
	"restaurant-advisor-be/pkg/advisor/specialist"

	"github.com/google/uuid"
)

type fakeDirectory struct {
	users    map[uuid.UUID]*entity.User
	sessions map[uuid.UUID]*entity.Session
	created  []uuid.UUID
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		users:    make(map[uuid.UUID]*entity.User),
		sessions: make(map[uuid.UUID]*entity.Session),
	}
}

func (f *fakeDirectory) addUser(role string) uuid.UUID {
	id := uuid.New()
	f.users[id] = &entity.User{Id: id, Username: "u-" + role, Role: role}
	return id
}

func (f *fakeDirectory) addSession(userId uuid.UUID, status entity.SessionStatus) uuid.UUID {
	id := uuid.New()
	f.sessions[id] = &entity.Session{Id: id, UserId: userId, Status: status, LastActivity: time.Now()}
	return id
}

func (f *fakeDirectory) User(ctx context.Context, userId uuid.UUID) (*entity.User, error) {
	return f.users[userId], nil
}

func (f *fakeDirectory) Session(ctx context.Context, sessionId uuid.UUID) (*entity.Session, error) {
	return f.sessions[sessionId], nil
}

func (f *fakeDirectory) CreateSession(ctx context.Context, userId uuid.UUID) (*entity.Session, error) {
	id := f.addSession(userId, entity.SessionStatusActive)
	f.created = append(f.created, id)
	return f.sessions[id], nil
}

type fakeMemory struct {
	turns      map[uuid.UUID][]entity.ConversationTurn
	records    map[uuid.UUID]*entity.LongTermRecord
	expired    []uuid.UUID
	expireRuns int
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{
		turns:   make(map[uuid.UUID][]entity.ConversationTurn),
		records: make(map[uuid.UUID]*entity.LongTermRecord),
	}
}

func (f *fakeMemory) AppendTurn(ctx context.Context, sessionId uuid.UUID, turn entity.ConversationTurn) error {
	f.turns[sessionId] = append(f.turns[sessionId], turn)
	return nil
}

func (f *fakeMemory) Context(ctx context.Context, sessionId uuid.UUID, n int) ([]entity.ConversationTurn, error) {
	return f.turns[sessionId], nil
}

func (f *fakeMemory) LongTerm(ctx context.Context, userId uuid.UUID) (*entity.LongTermRecord, error) {
	if r, ok := f.records[userId]; ok {
		return r, nil
	}
	return &entity.LongTermRecord{UserId: userId, Preferences: map[string]entity.PreferenceValue{}}, nil
}

func (f *fakeMemory) ExpireInactive(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	f.expireRuns++
	return f.expired, nil
}

type fakeRetriever struct {
	result *evidence.Result
	err    error
	calls  int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, filter evidence.PermissionFilter) (*evidence.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &evidence.Result{}, nil
}

type fakeRunner struct {
	err   error
	calls int
}

func (f *fakeRunner) Run(ctx context.Context, desc specialist.Descriptor, input specialist.Input) (specialist.Output, error) {
	f.calls++
	if f.err != nil {
		return specialist.Output{}, f.err
	}
	return specialist.Output{
		Domain: desc.Domain,
		Text:   fmt.Sprintf("%s analysis for: %s", desc.Domain, input.Query),
	}, nil
}

func newTestOrchestrator(t *testing.T, dir Directory, mem Memory, retriever Retriever, runner Runner) *Orchestrator {
	t.Helper()
	registry := specialist.NewRegistry()
	table, err := permission.NewTable()
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	o, err := New(dir, router.New(registry, 3), table, mem, retriever, runner, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o
}

func TestGuestLocationQueryIsDenied(t *testing.T) {
	dir := newFakeDirectory()
	userId := dir.addUser(constant.RoleGuest)
	sessionId := dir.addSession(userId, entity.SessionStatusActive)
	mem := newFakeMemory()
	retriever := &fakeRetriever{}
	runner := &fakeRunner{}
	o := newTestOrchestrator(t, dir, mem, retriever, runner)

	result, err := o.HandleQuery(context.Background(), userId, sessionId, "Italian restaurant location in Mumbai")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if result.Outcome != OutcomeDenied {
		t.Fatalf("outcome = %s, want denied", result.Outcome)
	}
	if len(result.Denials) != 1 {
		t.Fatalf("denials = %+v, want exactly one", result.Denials)
	}
	if result.Denials[0].Domain != constant.DomainLocation {
		t.Errorf("denied domain = %s, want location", result.Denials[0].Domain)
	}
	if result.Denials[0].RequiredRole != constant.RolePremium {
		t.Errorf("required role = %s, want premium", result.Denials[0].RequiredRole)
	}
	if retriever.calls != 0 {
		t.Error("retrieval ran for a fully denied query")
	}
	if runner.calls != 0 {
		t.Error("a specialist ran for a fully denied query")
	}
	if len(mem.turns[sessionId]) != 0 {
		t.Error("denied turn was appended to memory")
	}
}

func TestPremiumCompositeQueryRunsAllSpecialists(t *testing.T) {
	dir := newFakeDirectory()
	userId := dir.addUser(constant.RolePremium)
	sessionId := dir.addSession(userId, entity.SessionStatusActive)
	mem := newFakeMemory()
	retriever := &fakeRetriever{result: &evidence.Result{
		Snippets: []evidence.Snippet{{DocumentId: "d1", Title: "T Nagar rents", Content: "commercial rent data", Page: 2}},
		Graph:    []evidence.GraphHit{{Node: "T Nagar", Kind: "Area", Match: 0.9}},
	}}
	runner := &fakeRunner{}
	o := newTestOrchestrator(t, dir, mem, retriever, runner)

	result, err := o.HandleQuery(context.Background(), userId, sessionId,
		"Compare location, market demand and regulatory requirements for T Nagar, Chennai")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s, want success", result.Outcome)
	}

	want := []string{constant.DomainLocation, constant.DomainRegulatory, constant.DomainMarket}
	if len(result.SpecialistsRun) != len(want) {
		t.Fatalf("specialists = %v, want %v", result.SpecialistsRun, want)
	}
	for i, domain := range want {
		if result.SpecialistsRun[i] != domain {
			t.Fatalf("specialists = %v, want priority order %v", result.SpecialistsRun, want)
		}
	}
	if len(result.Denials) != 0 {
		t.Errorf("denials = %+v, want none", result.Denials)
	}

	// Citations tagged by source, both sources present.
	var kb, graph bool
	for _, c := range result.Citations {
		switch c.Source {
		case evidence.SourceKnowledgeBase:
			kb = true
		case evidence.SourceKnowledgeGraph:
			graph = true
		}
	}
	if !kb || !graph {
		t.Errorf("citations = %+v, want both sources represented", result.Citations)
	}

	// Fusion triggers on location+market.
	if result.Opportunity == nil {
		t.Error("expected opportunity score for location+market query")
	}

	turns := mem.turns[sessionId]
	if len(turns) != 1 {
		t.Fatalf("appended turns = %d, want 1", len(turns))
	}
	if turns[0].Response != result.AnswerText {
		t.Error("appended turn does not carry the composed answer")
	}
}

func TestExpiredSessionGetsFreshSession(t *testing.T) {
	dir := newFakeDirectory()
	userId := dir.addUser(constant.RolePremium)
	expiredId := dir.addSession(userId, entity.SessionStatusExpired)
	mem := newFakeMemory()
	retriever := &fakeRetriever{}
	runner := &fakeRunner{}
	o := newTestOrchestrator(t, dir, mem, retriever, runner)

	result, err := o.HandleQuery(context.Background(), userId, expiredId, "Where should I open in Pune? Best location?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if mem.expireRuns == 0 {
		t.Error("expiry sweep did not run on query entry")
	}
	if result.SessionId == expiredId {
		t.Fatal("query ran against the expired session")
	}
	if len(dir.created) != 1 || dir.created[0] != result.SessionId {
		t.Fatalf("fresh session not issued: created=%v result=%s", dir.created, result.SessionId)
	}
	if len(mem.turns[expiredId]) != 0 {
		t.Error("turn appended to the expired session")
	}
	if len(mem.turns[result.SessionId]) != 1 {
		t.Errorf("new session turns = %d, want 1", len(mem.turns[result.SessionId]))
	}
}

func TestUnknownSessionIsInvalid(t *testing.T) {
	dir := newFakeDirectory()
	userId := dir.addUser(constant.RolePremium)
	o := newTestOrchestrator(t, dir, newFakeMemory(), &fakeRetriever{}, &fakeRunner{})

	_, err := o.HandleQuery(context.Background(), userId, uuid.New(), "any question about food")
	if !errors.Is(err, errs.ErrSessionInvalid) {
		t.Fatalf("err = %v, want ErrSessionInvalid", err)
	}
}

func TestEmptyQueryIsInvalid(t *testing.T) {
	dir := newFakeDirectory()
	userId := dir.addUser(constant.RoleGuest)
	sessionId := dir.addSession(userId, entity.SessionStatusActive)
	o := newTestOrchestrator(t, dir, newFakeMemory(), &fakeRetriever{}, &fakeRunner{})

	_, err := o.HandleQuery(context.Background(), userId, sessionId, "   ")
	if !errors.Is(err, errs.ErrInvalidQuery) {
		t.Fatalf("err = %v, want ErrInvalidQuery", err)
	}
}

func TestDegradedRetrievalStillCompletes(t *testing.T) {
	dir := newFakeDirectory()
	userId := dir.addUser(constant.RolePremium)
	sessionId := dir.addSession(userId, entity.SessionStatusActive)
	mem := newFakeMemory()
	retriever := &fakeRetriever{result: &evidence.Result{
		Snippets: []evidence.Snippet{{DocumentId: "d1", Content: "zoning text"}},
		Degraded: []string{evidence.SourceKnowledgeGraph},
	}}
	o := newTestOrchestrator(t, dir, mem, retriever, &fakeRunner{})

	result, err := o.HandleQuery(context.Background(), userId, sessionId, "What are the license requirements in Chennai?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s, want success despite degradation", result.Outcome)
	}
	if len(result.DegradedSources) != 1 || result.DegradedSources[0] != evidence.SourceKnowledgeGraph {
		t.Fatalf("degraded = %v, want [graph]", result.DegradedSources)
	}
	if !strings.Contains(result.AnswerText, "knowledge graph") {
		t.Error("answer not annotated with the degraded source")
	}
	if len(mem.turns[sessionId]) != 1 {
		t.Error("degraded-success turn was not recorded")
	}
}

func TestAllSourcesUnavailableIsErrorWithoutMemoryWrite(t *testing.T) {
	dir := newFakeDirectory()
	userId := dir.addUser(constant.RolePremium)
	sessionId := dir.addSession(userId, entity.SessionStatusActive)
	mem := newFakeMemory()
	retriever := &fakeRetriever{result: &evidence.Result{
		Degraded: []string{evidence.SourceKnowledgeBase, evidence.SourceKnowledgeGraph},
	}}
	runner := &fakeRunner{}
	o := newTestOrchestrator(t, dir, mem, retriever, runner)

	result, err := o.HandleQuery(context.Background(), userId, sessionId, "Best location in Jaipur?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if result.Outcome != OutcomeError {
		t.Fatalf("outcome = %s, want error", result.Outcome)
	}
	if runner.calls != 0 {
		t.Error("specialists ran with no evidence available")
	}
	if len(mem.turns[sessionId]) != 0 {
		t.Error("erroring turn was appended to memory")
	}
}

func TestAmbiguousQueryFallsBackToGeneral(t *testing.T) {
	dir := newFakeDirectory()
	userId := dir.addUser(constant.RoleGuest)
	sessionId := dir.addSession(userId, entity.SessionStatusActive)
	mem := newFakeMemory()
	o := newTestOrchestrator(t, dir, mem, &fakeRetriever{}, &fakeRunner{})

	result, err := o.HandleQuery(context.Background(), userId, sessionId, "help me please")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if !result.Ambiguous {
		t.Error("decision not flagged ambiguous")
	}
	if len(result.SpecialistsRun) != 1 || result.SpecialistsRun[0] != constant.DomainGeneral {
		t.Fatalf("specialists = %v, want [general]", result.SpecialistsRun)
	}
}

func TestCancelledRequestAppendsNothing(t *testing.T) {
	dir := newFakeDirectory()
	userId := dir.addUser(constant.RolePremium)
	sessionId := dir.addSession(userId, entity.SessionStatusActive)
	mem := newFakeMemory()

	ctx, cancel := context.WithCancel(context.Background())
	runner := &cancellingRunner{cancel: cancel}
	o := newTestOrchestrator(t, dir, mem, &fakeRetriever{}, runner)

	_, err := o.HandleQuery(ctx, userId, sessionId, "What location works in Kolkata?")
	if err == nil {
		t.Fatal("expected error after caller cancellation")
	}
	if len(mem.turns[sessionId]) != 0 {
		t.Error("turn appended despite cancellation before compose")
	}
}

// cancellingRunner cancels the request while "generating", simulating a
// caller disconnect mid-flight.
type cancellingRunner struct {
	cancel context.CancelFunc
}

func (r *cancellingRunner) Run(ctx context.Context, desc specialist.Descriptor, input specialist.Input) (specialist.Output, error) {
	r.cancel()
	return specialist.Output{Domain: desc.Domain, Text: "partial"}, nil
}
