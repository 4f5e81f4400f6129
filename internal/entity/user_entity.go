package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Username     string
	PasswordHash *string
	FullName     string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
