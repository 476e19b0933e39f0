package entity

import "time"

// SentinelTopic is assigned to sessions created before a meaningful topic is
// known. Topic backfill only ever replaces this value.
const SentinelTopic = "General Research"

type ResearchSession struct {
	Id             int64
	UserId         int64
	PrimaryTopic   string
	SessionSummary *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ResearchEntry is one persisted query/answer turn. Entries are immutable
// once written; no repository exposes an update path.
type ResearchEntry struct {
	Id             int64
	SessionId      int64
	Query          string
	Response       string
	ExtractedFacts *string
	SourcesUsed    int
	QueryEmbedding []float32 // nil when the embedding capability was off
	CreatedAt      time.Time
}
