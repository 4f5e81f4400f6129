package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/pkg/logger"
	repomemory "restaurant-advisor-be/internal/repository/memory"

	"github.com/google/uuid"
)

// fakePersistence is an in-memory Persistence for tests.
type fakePersistence struct {
	mu       sync.Mutex
	turns    map[uuid.UUID][]entity.ConversationTurn
	sessions map[uuid.UUID]entity.Session
	records  map[uuid.UUID]*entity.LongTermRecord
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{
		turns:    make(map[uuid.UUID][]entity.ConversationTurn),
		sessions: make(map[uuid.UUID]entity.Session),
		records:  make(map[uuid.UUID]*entity.LongTermRecord),
	}
}

func (f *fakePersistence) addSession(userId uuid.UUID, lastActivity time.Time) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.sessions[id] = entity.Session{
		Id:           id,
		UserId:       userId,
		Status:       entity.SessionStatusActive,
		CreatedAt:    lastActivity,
		LastActivity: lastActivity,
	}
	return id
}

func (f *fakePersistence) SaveTurn(ctx context.Context, turn *entity.ConversationTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns[turn.SessionId] = append(f.turns[turn.SessionId], *turn)
	return nil
}

func (f *fakePersistence) RecentTurns(ctx context.Context, sessionId uuid.UUID, n int) ([]entity.ConversationTurn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	turns := f.turns[sessionId]
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]entity.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

func (f *fakePersistence) NextSeq(ctx context.Context, sessionId uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.turns[sessionId]) + 1, nil
}

func (f *fakePersistence) TouchSession(ctx context.Context, sessionId uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionId]
	if !ok {
		return fmt.Errorf("session %s not found", sessionId)
	}
	s.LastActivity = at
	f.sessions[sessionId] = s
	return nil
}

func (f *fakePersistence) ExpireSession(ctx context.Context, sessionId uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionId]
	if !ok {
		return fmt.Errorf("session %s not found", sessionId)
	}
	s.Status = entity.SessionStatusExpired
	f.sessions[sessionId] = s
	return nil
}

func (f *fakePersistence) InactiveSessions(ctx context.Context, cutoff time.Time) ([]entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Session
	for _, s := range f.sessions {
		if s.Status == entity.SessionStatusActive && s.LastActivity.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakePersistence) UpsertLongTerm(ctx context.Context, record *entity.LongTermRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *record
	clone.Preferences = make(map[string]entity.PreferenceValue, len(record.Preferences))
	for k, v := range record.Preferences {
		clone.Preferences[k] = v
	}
	clone.Insights = append([]string(nil), record.Insights...)
	f.records[record.UserId] = &clone
	return nil
}

func (f *fakePersistence) LongTerm(ctx context.Context, userId uuid.UUID) (*entity.LongTermRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[userId]
	if !ok {
		return nil, nil
	}
	clone := *record
	clone.Preferences = make(map[string]entity.PreferenceValue, len(record.Preferences))
	for k, v := range record.Preferences {
		clone.Preferences[k] = v
	}
	clone.Insights = append([]string(nil), record.Insights...)
	return &clone, nil
}

func (f *fakePersistence) AllLongTerm(ctx context.Context) ([]*entity.LongTermRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.LongTermRecord, 0, len(f.records))
	for _, record := range f.records {
		clone := *record
		out = append(out, &clone)
	}
	return out, nil
}

func newTestStore(t *testing.T, persistence Persistence, capacity int, timeout time.Duration) *Store {
	t.Helper()
	store, err := NewStore(persistence, repomemory.NewBufferRepository(), nil, logger.NewNopLogger(), capacity, timeout)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestAppendTurnBufferCapacity(t *testing.T) {
	persistence := newFakePersistence()
	userId := uuid.New()
	sessionId := persistence.addSession(userId, time.Now())
	store := newTestStore(t, persistence, 3, time.Hour)

	ctx := context.Background()
	for i := 1; i <= 7; i++ {
		err := store.AppendTurn(ctx, sessionId, entity.ConversationTurn{
			Query:    fmt.Sprintf("query %d", i),
			Response: fmt.Sprintf("answer %d", i),
		})
		if err != nil {
			t.Fatalf("AppendTurn %d: %v", i, err)
		}
	}

	buffer, err := store.Context(ctx, sessionId, 0)
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(buffer) != 3 {
		t.Fatalf("buffer length = %d, want 3", len(buffer))
	}
	for i, turn := range buffer {
		wantQuery := fmt.Sprintf("query %d", 5+i)
		if turn.Query != wantQuery {
			t.Errorf("buffer[%d].Query = %q, want %q", i, turn.Query, wantQuery)
		}
		if turn.Seq != 5+i {
			t.Errorf("buffer[%d].Seq = %d, want %d", i, turn.Seq, 5+i)
		}
	}
}

func TestContextReturnsMostRecentN(t *testing.T) {
	persistence := newFakePersistence()
	sessionId := persistence.addSession(uuid.New(), time.Now())
	store := newTestStore(t, persistence, 10, time.Hour)

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		if err := store.AppendTurn(ctx, sessionId, entity.ConversationTurn{Query: fmt.Sprintf("q%d", i)}); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
	}

	got, err := store.Context(ctx, sessionId, 2)
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(got) != 2 || got[0].Query != "q4" || got[1].Query != "q5" {
		t.Fatalf("Context(2) = %+v, want [q4 q5]", got)
	}
}

func TestContextRehydratesAfterRestart(t *testing.T) {
	persistence := newFakePersistence()
	sessionId := persistence.addSession(uuid.New(), time.Now())
	store := newTestStore(t, persistence, 10, time.Hour)

	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		if err := store.AppendTurn(ctx, sessionId, entity.ConversationTurn{Query: fmt.Sprintf("q%d", i)}); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
	}

	// A fresh store shares persistence but has an empty buffer cache.
	restarted := newTestStore(t, persistence, 10, time.Hour)
	got, err := restarted.Context(ctx, sessionId, 0)
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("rehydrated buffer length = %d, want 4", len(got))
	}
}

func TestAppendTurnRehydratesColdBuffer(t *testing.T) {
	persistence := newFakePersistence()
	sessionId := persistence.addSession(uuid.New(), time.Now())
	store := newTestStore(t, persistence, 10, time.Hour)

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if err := store.AppendTurn(ctx, sessionId, entity.ConversationTurn{Query: fmt.Sprintf("q%d", i)}); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
	}

	// Append directly on a fresh store, without a prior Context call warming
	// the buffer. The persisted turns must survive alongside the new one.
	restarted := newTestStore(t, persistence, 10, time.Hour)
	if err := restarted.AppendTurn(ctx, sessionId, entity.ConversationTurn{Query: "q4"}); err != nil {
		t.Fatalf("AppendTurn after restart: %v", err)
	}

	got, err := restarted.Context(ctx, sessionId, 0)
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("buffer length = %d, want 4", len(got))
	}
	for i, turn := range got {
		want := fmt.Sprintf("q%d", i+1)
		if turn.Query != want {
			t.Errorf("turn %d query = %q, want %q", i, turn.Query, want)
		}
	}
}

func TestMergeLongTermLastWriterWins(t *testing.T) {
	persistence := newFakePersistence()
	userId := uuid.New()
	store := newTestStore(t, persistence, 10, time.Hour)
	ctx := context.Background()

	if err := store.MergeLongTerm(ctx, userId, "cuisine", "Italian"); err != nil {
		t.Fatalf("MergeLongTerm: %v", err)
	}
	before := time.Now()
	if err := store.MergeLongTerm(ctx, userId, "cuisine", "Thai"); err != nil {
		t.Fatalf("MergeLongTerm: %v", err)
	}

	record, err := store.LongTerm(ctx, userId)
	if err != nil {
		t.Fatalf("LongTerm: %v", err)
	}
	pref, ok := record.Preferences["cuisine"]
	if !ok {
		t.Fatal("cuisine preference missing")
	}
	if pref.Value != "Thai" {
		t.Errorf("cuisine = %q, want Thai", pref.Value)
	}
	if pref.UpdatedAt.Before(before) {
		t.Errorf("UpdatedAt %v predates second merge %v", pref.UpdatedAt, before)
	}
}

func TestMergeLongTermConcurrentDistinctKeys(t *testing.T) {
	persistence := newFakePersistence()
	userId := uuid.New()
	store := newTestStore(t, persistence, 10, time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	keys := []string{"cuisine", "city", "budget", "seating"}
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := store.MergeLongTerm(ctx, userId, key, "value-"+key); err != nil {
				t.Errorf("MergeLongTerm(%s): %v", key, err)
			}
		}(key)
	}
	wg.Wait()

	record, err := store.LongTerm(ctx, userId)
	if err != nil {
		t.Fatalf("LongTerm: %v", err)
	}
	for _, key := range keys {
		if record.Preferences[key].Value != "value-"+key {
			t.Errorf("key %s = %q, want %q", key, record.Preferences[key].Value, "value-"+key)
		}
	}
}

func TestExpireInactiveArchivesAndIsIdempotent(t *testing.T) {
	persistence := newFakePersistence()
	userId := uuid.New()
	now := time.Now()
	sessionId := persistence.addSession(userId, now.Add(-31*time.Minute))
	store := newTestStore(t, persistence, 10, 30*time.Minute)
	ctx := context.Background()

	persistence.turns[sessionId] = []entity.ConversationTurn{
		{SessionId: sessionId, Seq: 1, Query: "Looking for Italian restaurants in Mumbai"},
		{SessionId: sessionId, Seq: 2, Query: "Something affordable near the station"},
	}

	archived, err := store.ExpireInactive(ctx, now)
	if err != nil {
		t.Fatalf("ExpireInactive: %v", err)
	}
	if len(archived) != 1 || archived[0] != sessionId {
		t.Fatalf("archived = %v, want [%s]", archived, sessionId)
	}

	if persistence.sessions[sessionId].Status != entity.SessionStatusExpired {
		t.Fatal("session not marked expired")
	}

	record, err := store.LongTerm(ctx, userId)
	if err != nil {
		t.Fatalf("LongTerm: %v", err)
	}
	if record.Preferences["cuisine"].Value != "Italian" {
		t.Errorf("cuisine = %q, want Italian", record.Preferences["cuisine"].Value)
	}
	if record.Preferences["city"].Value != "Mumbai" {
		t.Errorf("city = %q, want Mumbai", record.Preferences["city"].Value)
	}
	if record.Preferences["budget"].Value != "Low" {
		t.Errorf("budget = %q, want Low", record.Preferences["budget"].Value)
	}

	// Second run sees no active inactive sessions.
	archived, err = store.ExpireInactive(ctx, now)
	if err != nil {
		t.Fatalf("ExpireInactive rerun: %v", err)
	}
	if len(archived) != 0 {
		t.Fatalf("rerun archived = %v, want none", archived)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	persistence := newFakePersistence()
	userId := uuid.New()
	store := newTestStore(t, persistence, 10, time.Hour)
	ctx := context.Background()

	if err := store.MergeLongTerm(ctx, userId, "cuisine", "Japanese"); err != nil {
		t.Fatalf("MergeLongTerm: %v", err)
	}

	data, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	other := newFakePersistence()
	restored := newTestStore(t, other, 10, time.Hour)
	if err := restored.Restore(ctx, data); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	record, err := restored.LongTerm(ctx, userId)
	if err != nil {
		t.Fatalf("LongTerm: %v", err)
	}
	if record.Preferences["cuisine"].Value != "Japanese" {
		t.Errorf("restored cuisine = %q, want Japanese", record.Preferences["cuisine"].Value)
	}
}

func TestNewStoreRejectsNegativeCapacity(t *testing.T) {
	_, err := NewStore(newFakePersistence(), repomemory.NewBufferRepository(), nil, logger.NewNopLogger(), -1, time.Hour)
	if err == nil {
		t.Fatal("expected error for negative capacity")
	}
}
