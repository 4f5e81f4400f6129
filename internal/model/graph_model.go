package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GraphNode struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string            `gorm:"type:text;not null;index"`
	Kind       string            `gorm:"type:text;not null;index"`
	Properties datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
}

func (GraphNode) TableName() string {
	return "graph_nodes"
}

type GraphEdge struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FromNodeId uuid.UUID         `gorm:"type:uuid;not null;index"`
	ToNodeId   uuid.UUID         `gorm:"type:uuid;not null;index"`
	Relation   string            `gorm:"type:text;not null;index"`
	Properties datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
}

func (GraphEdge) TableName() string {
	return "graph_edges"
}
