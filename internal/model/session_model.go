package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AdvisorSession struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;index"`
	Status       string    `gorm:"type:text;not null;default:'active';index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	LastActivity time.Time `gorm:"not null;index"`
}

func (AdvisorSession) TableName() string {
	return "advisor_sessions"
}

type ConversationTurn struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Seq         int            `gorm:"not null"`
	Query       string         `gorm:"type:text;not null"`
	Response    string         `gorm:"type:text"`
	Specialists datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}
