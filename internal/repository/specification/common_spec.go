package specification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by primary key.
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByIDs filters by a list of IDs.
type ByIDs struct {
	IDs []uuid.UUID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

// ByUserID filters rows owned by a user.
type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// BySessionID filters turns belonging to a session.
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByUsername filters users by unique username.
type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ?", s.Username)
}

// ByStatus filters sessions by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// LastActivityBefore selects sessions idle since before the cutoff.
type LastActivityBefore struct {
	Cutoff time.Time
}

func (s LastActivityBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("last_activity < ?", s.Cutoff)
}

// ByCategoryIn filters knowledge documents to visible categories.
type ByCategoryIn struct {
	Categories []string
}

func (s ByCategoryIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category IN ?", s.Categories)
}

// OrderBy applies ordering.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination applies limit/offset.
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
