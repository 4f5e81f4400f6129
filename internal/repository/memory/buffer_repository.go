package memory

import (
	"time"

	"restaurant-advisor-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// BufferRepository keeps per-session short-term turn buffers in process
// memory. Entries never auto-expire; expiry is driven by session activity,
// so the store owns eviction and the cache only provides the keyed map.
type BufferRepository struct {
	cache *cache.Cache
}

func NewBufferRepository() *BufferRepository {
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &BufferRepository{
		cache: c,
	}
}

func (r *BufferRepository) Save(sessionId uuid.UUID, turns []entity.ConversationTurn) {
	r.cache.Set(sessionId.String(), turns, cache.NoExpiration)
}

func (r *BufferRepository) Get(sessionId uuid.UUID) ([]entity.ConversationTurn, bool) {
	if x, found := r.cache.Get(sessionId.String()); found {
		return x.([]entity.ConversationTurn), true
	}
	return nil, false
}

func (r *BufferRepository) Delete(sessionId uuid.UUID) {
	r.cache.Delete(sessionId.String())
}
