package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/pkg/logger"
	repomemory "restaurant-advisor-be/internal/repository/memory"
	"restaurant-advisor-be/pkg/advisor/errs"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	DefaultCapacity       = 10
	DefaultSessionTimeout = 30 * time.Minute

	// SessionArchivedTopic carries one event per session archived by
	// ExpireInactive.
	SessionArchivedTopic = "memory.session.archived"
)

// SessionArchivedEvent is the payload published on SessionArchivedTopic.
type SessionArchivedEvent struct {
	SessionId  uuid.UUID `json:"session_id"`
	UserId     uuid.UUID `json:"user_id"`
	Turns      int       `json:"turns"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Persistence is the durable side of the store. Long-term records and
// session metadata must survive restarts; the storage engine behind this
// contract is the caller's choice.
type Persistence interface {
	SaveTurn(ctx context.Context, turn *entity.ConversationTurn) error
	RecentTurns(ctx context.Context, sessionId uuid.UUID, n int) ([]entity.ConversationTurn, error)
	NextSeq(ctx context.Context, sessionId uuid.UUID) (int, error)
	TouchSession(ctx context.Context, sessionId uuid.UUID, at time.Time) error
	ExpireSession(ctx context.Context, sessionId uuid.UUID) error
	InactiveSessions(ctx context.Context, cutoff time.Time) ([]entity.Session, error)
	UpsertLongTerm(ctx context.Context, record *entity.LongTermRecord) error
	LongTerm(ctx context.Context, userId uuid.UUID) (*entity.LongTermRecord, error)
	AllLongTerm(ctx context.Context) ([]*entity.LongTermRecord, error)
}

// Store is the multi-tier conversational memory: a bounded FIFO buffer of
// recent turns per session, and a persistent per-user preference/insight
// record. Per-session operations are single-writer; long-term merges are
// serialized per user so concurrent merges on different keys both land.
type Store struct {
	persistence Persistence
	buffers     *repomemory.BufferRepository
	publisher   message.Publisher
	log         logger.ILogger

	capacity int
	timeout  time.Duration

	sessionLocks *keyedMutex
	userLocks    *keyedMutex
}

func NewStore(
	persistence Persistence,
	buffers *repomemory.BufferRepository,
	publisher message.Publisher,
	log logger.ILogger,
	capacity int,
	timeout time.Duration,
) (*Store, error) {
	if capacity < 0 {
		return nil, errs.InvalidConfiguration("buffer capacity %d is negative", capacity)
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &Store{
		persistence:  persistence,
		buffers:      buffers,
		publisher:    publisher,
		log:          log,
		capacity:     capacity,
		timeout:      timeout,
		sessionLocks: newKeyedMutex(),
		userLocks:    newKeyedMutex(),
	}, nil
}

func (s *Store) Capacity() int {
	return s.capacity
}

func (s *Store) SessionTimeout() time.Duration {
	return s.timeout
}

// AppendTurn records a completed turn: assigns the next sequence number,
// persists the turn, pushes it onto the session buffer (evicting the oldest
// past capacity) and bumps the session's activity timestamp.
func (s *Store) AppendTurn(ctx context.Context, sessionId uuid.UUID, turn entity.ConversationTurn) error {
	mu := s.sessionLocks.get(sessionId.String())
	mu.Lock()
	defer mu.Unlock()

	seq, err := s.persistence.NextSeq(ctx, sessionId)
	if err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	turn.SessionId = sessionId
	turn.Seq = seq
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}

	buffer, found := s.buffers.Get(sessionId)
	if !found {
		// Cold buffer after a restart: rehydrate the persisted tail before
		// the new turn is saved so the append does not orphan earlier turns.
		persisted, err := s.persistence.RecentTurns(ctx, sessionId, s.capacity)
		if err != nil {
			return fmt.Errorf("load turns: %w", err)
		}
		buffer = persisted
	}

	if err := s.persistence.SaveTurn(ctx, &turn); err != nil {
		return fmt.Errorf("save turn: %w", err)
	}

	buffer = append(buffer, turn)
	if len(buffer) > s.capacity {
		buffer = buffer[len(buffer)-s.capacity:]
	}
	s.buffers.Save(sessionId, buffer)

	if err := s.persistence.TouchSession(ctx, sessionId, turn.CreatedAt); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Context returns the n most recent turns in arrival order. n <= 0 returns
// the whole buffer. After a restart the buffer is rehydrated from persisted
// turns.
func (s *Store) Context(ctx context.Context, sessionId uuid.UUID, n int) ([]entity.ConversationTurn, error) {
	mu := s.sessionLocks.get(sessionId.String())
	mu.Lock()
	defer mu.Unlock()

	buffer, found := s.buffers.Get(sessionId)
	if !found {
		turns, err := s.persistence.RecentTurns(ctx, sessionId, s.capacity)
		if err != nil {
			return nil, fmt.Errorf("load turns: %w", err)
		}
		buffer = turns
		s.buffers.Save(sessionId, buffer)
	}

	if n <= 0 || n >= len(buffer) {
		out := make([]entity.ConversationTurn, len(buffer))
		copy(out, buffer)
		return out, nil
	}
	out := make([]entity.ConversationTurn, n)
	copy(out, buffer[len(buffer)-n:])
	return out, nil
}

// Forget drops a session's buffer without archiving it. Used when the
// session itself is deleted.
func (s *Store) Forget(sessionId uuid.UUID) {
	mu := s.sessionLocks.get(sessionId.String())
	mu.Lock()
	defer mu.Unlock()
	s.buffers.Delete(sessionId)
}

// MergeLongTerm writes one preference key. Last writer wins per key; merges
// for the same user are serialized so two different keys merged concurrently
// both survive.
func (s *Store) MergeLongTerm(ctx context.Context, userId uuid.UUID, key, value string) error {
	mu := s.userLocks.get(userId.String())
	mu.Lock()
	defer mu.Unlock()
	return s.mergeLocked(ctx, userId, map[string]string{key: value}, nil, time.Now())
}

// mergeLocked applies preference and insight updates to the user's record.
// Caller holds the user lock.
func (s *Store) mergeLocked(ctx context.Context, userId uuid.UUID, prefs map[string]string, insights []string, at time.Time) error {
	record, err := s.persistence.LongTerm(ctx, userId)
	if err != nil {
		return fmt.Errorf("load long-term record: %w", err)
	}
	if record == nil {
		record = &entity.LongTermRecord{
			UserId:      userId,
			Preferences: make(map[string]entity.PreferenceValue),
		}
	}
	if record.Preferences == nil {
		record.Preferences = make(map[string]entity.PreferenceValue)
	}

	for key, value := range prefs {
		record.Preferences[key] = entity.PreferenceValue{
			Value:     value,
			UpdatedAt: at,
		}
	}
	for _, insight := range insights {
		if !containsString(record.Insights, insight) {
			record.Insights = append(record.Insights, insight)
		}
	}
	record.UpdatedAt = at

	if err := s.persistence.UpsertLongTerm(ctx, record); err != nil {
		return fmt.Errorf("upsert long-term record: %w", err)
	}
	return nil
}

// LongTerm returns the user's record, or an empty record when the user has
// never merged anything.
func (s *Store) LongTerm(ctx context.Context, userId uuid.UUID) (*entity.LongTermRecord, error) {
	record, err := s.persistence.LongTerm(ctx, userId)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &entity.LongTermRecord{
			UserId:      userId,
			Preferences: make(map[string]entity.PreferenceValue),
		}, nil
	}
	return record, nil
}

// ExpireInactive transitions every session idle past the timeout to expired,
// reduces its buffer to salient preference facts merged into the owner's
// long-term record, discards the buffer, and reports the archived session
// ids. Re-running on already-expired sessions is a no-op: the inactive scan
// only returns active sessions.
func (s *Store) ExpireInactive(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	cutoff := now.Add(-s.timeout)
	sessions, err := s.persistence.InactiveSessions(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("scan inactive sessions: %w", err)
	}

	var archived []uuid.UUID
	for _, session := range sessions {
		if err := s.archiveSession(ctx, session, now); err != nil {
			s.log.Error("memory", "failed to archive expired session", map[string]interface{}{
				"session_id": session.Id,
				"error":      err.Error(),
			})
			continue
		}
		archived = append(archived, session.Id)
	}
	return archived, nil
}

func (s *Store) archiveSession(ctx context.Context, session entity.Session, now time.Time) error {
	mu := s.sessionLocks.get(session.Id.String())
	mu.Lock()
	defer mu.Unlock()

	turns, found := s.buffers.Get(session.Id)
	if !found {
		loaded, err := s.persistence.RecentTurns(ctx, session.Id, s.capacity)
		if err != nil {
			return fmt.Errorf("load turns: %w", err)
		}
		turns = loaded
	}

	prefs := ExtractPreferences(turns)
	var insights []string
	if len(turns) > 0 {
		insights = append(insights, fmt.Sprintf("archived session %s with %d turns", session.Id, len(turns)))
	}

	userMu := s.userLocks.get(session.UserId.String())
	userMu.Lock()
	err := s.mergeLocked(ctx, session.UserId, prefs, insights, now)
	userMu.Unlock()
	if err != nil {
		return err
	}

	if err := s.persistence.ExpireSession(ctx, session.Id); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	s.buffers.Delete(session.Id)

	s.publishArchived(session, len(turns), now)

	s.log.Info("memory", "session archived", map[string]interface{}{
		"session_id": session.Id,
		"user_id":    session.UserId,
		"turns":      len(turns),
	})
	return nil
}

func (s *Store) publishArchived(session entity.Session, turns int, at time.Time) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(SessionArchivedEvent{
		SessionId:  session.Id,
		UserId:     session.UserId,
		Turns:      turns,
		ArchivedAt: at,
	})
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.publisher.Publish(SessionArchivedTopic, msg); err != nil {
		s.log.Warn("memory", "failed to publish archive event", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
}

// Snapshot serializes every long-term record. The format round-trips
// losslessly through Restore.
func (s *Store) Snapshot(ctx context.Context) ([]byte, error) {
	records, err := s.persistence.AllLongTerm(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(snapshotFile{Records: records, TakenAt: time.Now()}, "", "  ")
}

// Restore loads records from a Snapshot verbatim, overwriting existing
// records for the same users.
func (s *Store) Restore(ctx context.Context, data []byte) error {
	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	for _, record := range file.Records {
		mu := s.userLocks.get(record.UserId.String())
		mu.Lock()
		err := s.persistence.UpsertLongTerm(ctx, record)
		mu.Unlock()
		if err != nil {
			return fmt.Errorf("restore record for user %s: %w", record.UserId, err)
		}
	}
	return nil
}

type snapshotFile struct {
	Records []*entity.LongTermRecord `json:"records"`
	TakenAt time.Time                `json:"taken_at"`
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
