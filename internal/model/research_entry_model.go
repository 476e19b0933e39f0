package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type ResearchEntry struct {
	Id             int64            `gorm:"primaryKey;autoIncrement"`
	SessionId      int64            `gorm:"not null;index"`
	Query          string           `gorm:"type:text;not null"`
	Response       string           `gorm:"type:text;not null"`
	ExtractedFacts *string          `gorm:"type:text"`
	SourcesUsed    int              `gorm:"not null;default:0"`
	QueryEmbedding *pgvector.Vector `gorm:"type:vector(768)"` // nullable; set only when embeddings are enabled
	CreatedAt      time.Time        `gorm:"autoCreateTime;index"`

	Session ResearchSession `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (ResearchEntry) TableName() string {
	return "research_entries"
}
