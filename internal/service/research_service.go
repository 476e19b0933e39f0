package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-research-be/internal/config"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/research/history"
	"ai-research-be/pkg/research/prompt"
	"ai-research-be/pkg/research/session"
	"ai-research-be/pkg/research/sources"
	"ai-research-be/pkg/search"

	"github.com/google/uuid"
)

// IResearchService is the research orchestrator plus session management.
type IResearchService interface {
	Research(ctx context.Context, userId int64, request *dto.ResearchRequest) (*dto.ResearchResponse, error)
	GetSessions(ctx context.Context, userId int64) ([]*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId int64) error
}

// researchService walks one request through a fixed sequence: resolve
// session, retrieve context, search, assemble sources, compose, infer,
// persist. Search, assembly and inference failures are terminal; everything
// touching stored memory fails open.
type researchService struct {
	uowFactory     unitofwork.RepositoryFactory
	searchClient   search.Client
	assembler      *sources.Assembler
	retriever      *history.Retriever
	sessionManager *session.Manager
	llmProvider    llm.LLMProvider
	embedder       embedding.Provider // nil when the capability is off
	cfg            config.ResearchConfig
	log            logger.ILogger
}

func NewResearchService(
	uowFactory unitofwork.RepositoryFactory,
	searchClient search.Client,
	assembler *sources.Assembler,
	retriever *history.Retriever,
	sessionManager *session.Manager,
	llmProvider llm.LLMProvider,
	embedder embedding.Provider,
	cfg config.ResearchConfig,
	log logger.ILogger,
) IResearchService {
	return &researchService{
		uowFactory:     uowFactory,
		searchClient:   searchClient,
		assembler:      assembler,
		retriever:      retriever,
		sessionManager: sessionManager,
		llmProvider:    llmProvider,
		embedder:       embedder,
		cfg:            cfg,
		log:            log,
	}
}

func (rs *researchService) Research(ctx context.Context, userId int64, request *dto.ResearchRequest) (*dto.ResearchResponse, error) {
	query := strings.TrimSpace(request.Query)
	if query == "" {
		return nil, serverutils.NewValidationError("Query cannot be empty")
	}

	requestId := uuid.NewString()
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	// 1. Resolve session
	sessionId := request.SessionId
	if sessionId == 0 || request.ResetContext {
		resolved, err := rs.resolveSession(ctx, uow, userId, query)
		if err != nil {
			return nil, fmt.Errorf("resolve session: %w", err)
		}
		sessionId = resolved
	}

	// 2. Retrieve context (fail-open: a degraded packet is still a packet)
	packet := rs.retriever.Retrieve(ctx, uow, userId, sessionId, query)

	// 3. Search
	results, err := rs.searchClient.Search(ctx, query, rs.cfg.SearchResultCount)
	if err != nil {
		rs.log.Error("research", "search call failed", map[string]interface{}{
			"request_id": requestId,
			"error":      err.Error(),
		})
		return nil, serverutils.NewSearchUnavailableError(err.Error())
	}

	// 4. Assemble sources
	records := rs.assembler.Assemble(ctx, results)
	if len(records) == 0 {
		return nil, serverutils.NewNoSourcesError()
	}

	// 5. Compose prompt
	system, user := prompt.NewBuilder(packet, records, query, rs.cfg.MemoryReplyCap).Build()

	// 6. Infer
	answer, err := rs.llmProvider.Chat(ctx,
		[]llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		llm.WithTemperature(rs.cfg.Temperature),
		llm.WithMaxTokens(rs.cfg.MaxTokens),
	)
	if err != nil {
		rs.log.Error("research", "inference call failed", map[string]interface{}{
			"request_id": requestId,
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil, serverutils.NewInferenceFailedError(err.Error())
	}

	// 7. Persist (fail-open: losing a memory write beats losing the answer)
	rs.persistEntry(ctx, uow, userId, sessionId, query, answer, len(records), requestId)

	// 8. Respond
	topic := inferTopic(query)
	if packet.PrimaryTopic != nil && *packet.PrimaryTopic != "" {
		topic = *packet.PrimaryTopic
	}

	sourceDTOs := make([]dto.SourceDTO, len(records))
	for i, r := range records {
		sourceDTOs[i] = dto.SourceDTO{Id: r.Id, Title: r.Title, Url: r.URL}
	}

	return &dto.ResearchResponse{
		Answer:    answer,
		Sources:   sourceDTOs,
		SessionId: sessionId,
		Topic:     topic,
	}, nil
}

func (rs *researchService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, userId int64, query string) (int64, error) {
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	sessionId, err := rs.sessionManager.ResolveOrCreate(ctx, uow, userId, inferTopic(query))
	if err != nil {
		_ = uow.Rollback()
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, err
	}
	return sessionId, nil
}

// persistEntry writes the turn, touches the session and backfills a generic
// topic. Every failure here is logged and swallowed.
func (rs *researchService) persistEntry(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId int64, query, answer string, sourceCount int, requestId string) {
	entry := &entity.ResearchEntry{
		SessionId:   sessionId,
		Query:       query,
		Response:    answer,
		SourcesUsed: sourceCount,
		CreatedAt:   time.Now(),
	}

	if rs.embedder != nil {
		emb, err := rs.embedder.Encode(ctx, query)
		if err != nil {
			rs.log.Warn("research", "query embedding failed, storing entry without it", map[string]interface{}{
				"request_id": requestId,
				"session_id": sessionId,
				"error":      err.Error(),
			})
		} else {
			entry.QueryEmbedding = emb
		}
	}

	if err := uow.Begin(ctx); err != nil {
		rs.log.Warn("research", "entry persistence skipped", map[string]interface{}{
			"request_id": requestId,
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return
	}

	if err := rs.sessionManager.AppendEntry(ctx, uow, userId, entry); err != nil {
		_ = uow.Rollback()
		rs.log.Warn("research", "entry append failed", map[string]interface{}{
			"request_id": requestId,
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return
	}

	if err := rs.sessionManager.BackfillTopic(ctx, uow, userId, sessionId, query); err != nil {
		// Topic backfill is cosmetic; keep the entry.
		rs.log.Warn("research", "topic backfill failed", map[string]interface{}{
			"request_id": requestId,
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}

	if err := uow.Commit(); err != nil {
		rs.log.Warn("research", "entry commit failed", map[string]interface{}{
			"request_id": requestId,
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func (rs *researchService) GetSessions(ctx context.Context, userId int64) ([]*dto.SessionResponse, error) {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := rs.sessionManager.List(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, &dto.SessionResponse{
			Id:             s.Id,
			PrimaryTopic:   s.PrimaryTopic,
			SessionSummary: s.SessionSummary,
			IsActive:       s.IsActive,
			CreatedAt:      s.CreatedAt,
			UpdatedAt:      s.UpdatedAt,
		})
	}
	return response, nil
}

func (rs *researchService) DeleteSession(ctx context.Context, userId, sessionId int64) error {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	deleted, err := rs.sessionManager.DeleteOwned(ctx, uow, sessionId, userId)
	if err != nil {
		return err
	}
	if !deleted {
		return serverutils.NewNotFoundError("Session not found")
	}
	return nil
}

// inferTopic labels a session from the first words of its first query.
func inferTopic(query string) string {
	words := strings.Fields(query)
	if len(words) <= 5 {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:5], " ") + "..."
}
