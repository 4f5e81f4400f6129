package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LongTermRecord struct {
	UserId      uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Preferences datatypes.JSON `gorm:"type:jsonb"` // key -> {value, updated_at}
	Insights    datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (LongTermRecord) TableName() string {
	return "long_term_records"
}
