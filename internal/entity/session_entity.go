package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusExpired SessionStatus = "expired"
)

// Session owns an ordered short-term turn buffer. Once Status is expired the
// session is immutable.
type Session struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Status       SessionStatus
	CreatedAt    time.Time
	LastActivity time.Time
}

// ConversationTurn is immutable once appended and owned exclusively by its
// session. Seq is strictly increasing in arrival order.
type ConversationTurn struct {
	Id          uuid.UUID
	SessionId   uuid.UUID
	Seq         int
	Query       string
	Response    string
	Specialists []string
	CreatedAt   time.Time
}
