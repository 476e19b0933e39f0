package history

import (
	"context"
	"math"
	"sort"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/embedding"
)

// ScoredEntry pairs a past entry with its similarity to the current query.
type ScoredEntry struct {
	Entry      *entity.ResearchEntry
	Similarity float64
}

// ContextPacket is the per-request memory bundle handed to the prompt
// composer. RecentEntries arrive most-recent-first; the composer re-orders
// them chronologically. Degraded carries the storage cause when retrieval
// failed open.
type ContextPacket struct {
	PrimaryTopic   *string
	SessionSummary *string
	RecentEntries  []*entity.ResearchEntry
	SimilarEntries []ScoredEntry
	Degraded       error
}

type Config struct {
	RecencyLimit        int
	SimilarityThreshold float64
	SimilarTopK         int
}

// Retriever loads session memory. Storage failures never abort the request:
// the packet degrades to defaults and records why.
type Retriever struct {
	embedder embedding.Provider // nil disables similarity recall
	cfg      Config
	log      logger.ILogger
}

func NewRetriever(embedder embedding.Provider, cfg Config, log logger.ILogger) *Retriever {
	return &Retriever{
		embedder: embedder,
		cfg:      cfg,
		log:      log,
	}
}

// Retrieve builds the context packet for a session. Reads are scoped to the
// calling user so a foreign session id yields an empty packet, not someone
// else's memory.
func (r *Retriever) Retrieve(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId int64, query string) *ContextPacket {
	packet := &ContextPacket{}

	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		r.log.Warn("history", "context load failed, proceeding without memory", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		packet.Degraded = err
		return packet
	}
	if session == nil {
		return packet
	}

	packet.PrimaryTopic = &session.PrimaryTopic
	packet.SessionSummary = session.SessionSummary

	recent, err := uow.ResearchEntryRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{Count: r.cfg.RecencyLimit},
	)
	if err != nil {
		r.log.Warn("history", "recent entries load failed, proceeding without memory", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		packet.Degraded = err
		return packet
	}
	packet.RecentEntries = recent

	if r.embedder != nil {
		packet.SimilarEntries = r.retrieveSimilar(ctx, uow, sessionId, query, recent)
	}

	return packet
}

func (r *Retriever) retrieveSimilar(ctx context.Context, uow unitofwork.UnitOfWork, sessionId int64, query string, recent []*entity.ResearchEntry) []ScoredEntry {
	queryEmb, err := r.embedder.Encode(ctx, query)
	if err != nil {
		r.log.Warn("history", "query embedding failed, skipping similarity recall", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}

	embedded, err := uow.ResearchEntryRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.WithEmbedding{},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		r.log.Warn("history", "embedded entries load failed, skipping similarity recall", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}

	recentQueries := make(map[string]bool, len(recent))
	for _, e := range recent {
		recentQueries[e.Query] = true
	}

	return RankSimilar(queryEmb, embedded, recentQueries, r.cfg.SimilarityThreshold, r.cfg.SimilarTopK)
}

// RankSimilar is the pure ranking function: cosine similarity against each
// candidate, entries already in the recent set dropped, scores below the
// threshold dropped, stable sort descending, top-K kept. Deterministic for
// the same inputs; ties keep storage order.
func RankSimilar(queryEmb []float32, candidates []*entity.ResearchEntry, exclude map[string]bool, threshold float64, topK int) []ScoredEntry {
	scored := make([]ScoredEntry, 0, len(candidates))
	for _, c := range candidates {
		if exclude[c.Query] || len(c.QueryEmbedding) == 0 {
			continue
		}
		sim := CosineSimilarity(queryEmb, c.QueryEmbedding)
		if sim > threshold {
			scored = append(scored, ScoredEntry{Entry: c, Similarity: sim})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// CosineSimilarity returns 0 for mismatched or zero-length vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
