package dto

import "time"

type ResearchRequest struct {
	Query        string `json:"query" validate:"required"`
	SessionId    int64  `json:"session_id"`
	ResetContext bool   `json:"reset_context"`
}

// SourceDTO deliberately omits content: the client only needs to map [n]
// citations back to titles and URLs.
type SourceDTO struct {
	Id    int    `json:"id"`
	Title string `json:"title"`
	Url   string `json:"url"`
}

type ResearchResponse struct {
	Answer    string      `json:"answer"`
	Sources   []SourceDTO `json:"sources"`
	SessionId int64       `json:"session_id"`
	Topic     string      `json:"topic"`
}

type SessionResponse struct {
	Id             int64     `json:"id"`
	PrimaryTopic   string    `json:"primary_topic"`
	SessionSummary *string   `json:"session_summary"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
