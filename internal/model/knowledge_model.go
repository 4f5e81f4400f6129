package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeDocument struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string    `gorm:"type:text;not null"`
	Content   string    `gorm:"type:text;not null"`
	Category  string    `gorm:"type:text;not null;index"`
	SourceRef string    `gorm:"type:text"`
	Page      int       `gorm:"default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (KnowledgeDocument) TableName() string {
	return "knowledge_documents"
}

type DocumentEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId     uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (DocumentEmbedding) TableName() string {
	return "document_embeddings"
}
