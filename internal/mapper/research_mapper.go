package mapper

import (
	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ResearchMapper struct{}

func NewResearchMapper() *ResearchMapper {
	return &ResearchMapper{}
}

// Session Mappers

func (m *ResearchMapper) SessionToEntity(s *model.ResearchSession) *entity.ResearchSession {
	if s == nil {
		return nil
	}
	return &entity.ResearchSession{
		Id:             s.Id,
		UserId:         s.UserId,
		PrimaryTopic:   s.PrimaryTopic,
		SessionSummary: s.SessionSummary,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (m *ResearchMapper) SessionToModel(s *entity.ResearchSession) *model.ResearchSession {
	if s == nil {
		return nil
	}
	return &model.ResearchSession{
		Id:             s.Id,
		UserId:         s.UserId,
		PrimaryTopic:   s.PrimaryTopic,
		SessionSummary: s.SessionSummary,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// Entry Mappers

func (m *ResearchMapper) EntryToEntity(e *model.ResearchEntry) *entity.ResearchEntry {
	if e == nil {
		return nil
	}

	var embedding []float32
	if e.QueryEmbedding != nil {
		embedding = e.QueryEmbedding.Slice()
	}

	return &entity.ResearchEntry{
		Id:             e.Id,
		SessionId:      e.SessionId,
		Query:          e.Query,
		Response:       e.Response,
		ExtractedFacts: e.ExtractedFacts,
		SourcesUsed:    e.SourcesUsed,
		QueryEmbedding: embedding,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *ResearchMapper) EntryToModel(e *entity.ResearchEntry) *model.ResearchEntry {
	if e == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if len(e.QueryEmbedding) > 0 {
		v := pgvector.NewVector(e.QueryEmbedding)
		embedding = &v
	}

	return &model.ResearchEntry{
		Id:             e.Id,
		SessionId:      e.SessionId,
		Query:          e.Query,
		Response:       e.Response,
		ExtractedFacts: e.ExtractedFacts,
		SourcesUsed:    e.SourcesUsed,
		QueryEmbedding: embedding,
		CreatedAt:      e.CreatedAt,
	}
}
