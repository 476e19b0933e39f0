package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"ai-research-be/internal/config"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/pkg/research/history"
	"ai-research-be/pkg/research/session"
	"ai-research-be/pkg/research/sources"
	"ai-research-be/pkg/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResearchConfig() config.ResearchConfig {
	return config.ResearchConfig{
		SearchResultCount:   5,
		ScrapeTopN:          3,
		MinContentChars:     200,
		SourceContentCap:    2000,
		MaxSources:          5,
		RecencyLimit:        10,
		SimilarityThreshold: 0.4,
		SimilarTopK:         3,
		MemoryReplyCap:      200,
		Temperature:         0.3,
		MaxTokens:           1000,
	}
}

func longArticle(seed string) string {
	return strings.Repeat(seed+" background detail and analysis. ", 12)
}

func fiveSearchResults() []search.Result {
	results := make([]search.Result, 5)
	for i := range results {
		results[i] = search.Result{
			Title:   fmt.Sprintf("Result %d", i+1),
			Link:    fmt.Sprintf("https://site%d.example/a", i+1),
			Snippet: fmt.Sprintf("snippet %d", i+1),
		}
	}
	return results
}

func newTestService(store *memStore, searchClient search.Client, extract extractorFunc, model *fakeLLM) IResearchService {
	cfg := testResearchConfig()
	log := nopLogger{}

	assembler := sources.NewAssembler(extract, sources.Config{
		ScrapeTopN:       cfg.ScrapeTopN,
		MinContentChars:  cfg.MinContentChars,
		SourceContentCap: cfg.SourceContentCap,
		MaxSources:       cfg.MaxSources,
	})
	retriever := history.NewRetriever(nil, history.Config{
		RecencyLimit:        cfg.RecencyLimit,
		SimilarityThreshold: cfg.SimilarityThreshold,
		SimilarTopK:         cfg.SimilarTopK,
	}, log)

	return NewResearchService(
		&fakeFactory{store: store},
		searchClient,
		assembler,
		retriever,
		session.NewManager(),
		model,
		nil,
		cfg,
		log,
	)
}

func TestResearchHappyPathCreatesSessionAndPersistsEntry(t *testing.T) {
	store := newMemStore()
	searchClient := &fakeSearchClient{results: fiveSearchResults()}
	extract := extractorFunc(func(ctx context.Context, url string) string {
		return longArticle(url)
	})
	model := &fakeLLM{answer: "Batteries degrade because of dendrites [1][2]."}

	svc := newTestService(store, searchClient, extract, model)

	res, err := svc.Research(context.Background(), 7, &dto.ResearchRequest{
		Query: "how do solid state batteries work",
	})

	require.NoError(t, err)
	assert.Equal(t, model.answer, res.Answer)

	require.Len(t, res.Sources, 3)
	for i, source := range res.Sources {
		assert.Equal(t, i+1, source.Id)
		assert.Equal(t, fmt.Sprintf("Result %d", i+1), source.Title)
	}

	require.Len(t, store.sessions, 1)
	assert.Equal(t, store.sessions[0].Id, res.SessionId)
	assert.Equal(t, int64(7), store.sessions[0].UserId)
	assert.Equal(t, "how do solid state batteries...", res.Topic)

	require.Len(t, store.entries, 1)
	entry := store.entries[0]
	assert.Equal(t, res.SessionId, entry.SessionId)
	assert.Equal(t, "how do solid state batteries work", entry.Query)
	assert.Equal(t, model.answer, entry.Response)
	assert.Equal(t, 3, entry.SourcesUsed)
	assert.Nil(t, entry.QueryEmbedding)
}

func TestResearchReusesExistingSessionAndFeedsMemory(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.sessions = append(store.sessions, &entity.ResearchSession{
		Id: 1, UserId: 7, PrimaryTopic: "solid state batteries",
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	store.nextSessionId = 2
	store.entries = append(store.entries, &entity.ResearchEntry{
		Id: 1, SessionId: 1, Query: "what is a solid electrolyte",
		Response: "A solid electrolyte replaces the liquid one.", CreatedAt: now,
	})
	store.nextEntryId = 2

	searchClient := &fakeSearchClient{results: fiveSearchResults()}
	extract := extractorFunc(func(ctx context.Context, url string) string {
		return longArticle(url)
	})
	model := &fakeLLM{answer: "As discussed before, yes [1]."}

	svc := newTestService(store, searchClient, extract, model)

	res, err := svc.Research(context.Background(), 7, &dto.ResearchRequest{
		Query:     "does that improve safety",
		SessionId: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.SessionId)
	assert.Equal(t, "solid state batteries", res.Topic, "existing topic wins over the inferred one")
	assert.Len(t, store.sessions, 1, "no second session is created")

	require.Len(t, model.messages, 2)
	userMessage := model.messages[1].Content
	assert.Contains(t, userMessage, "RECENT CONVERSATION:")
	assert.Contains(t, userMessage, "what is a solid electrolyte")
	assert.Contains(t, userMessage, "does that improve safety")

	assert.Len(t, store.entries, 2)
}

func TestResearchSearchFailureIsTerminal(t *testing.T) {
	store := newMemStore()
	searchClient := &fakeSearchClient{err: errors.New("connection refused")}
	extract := extractorFunc(func(ctx context.Context, url string) string { return "" })
	model := &fakeLLM{answer: "unused"}

	svc := newTestService(store, searchClient, extract, model)

	res, err := svc.Research(context.Background(), 7, &dto.ResearchRequest{Query: "anything"})

	require.Error(t, err)
	assert.Nil(t, res)

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, serverutils.KindSearchUnavailable, apiErr.Kind)
	assert.Equal(t, 503, apiErr.Status)

	assert.Len(t, store.sessions, 1, "session resolution happens before search")
	assert.Empty(t, store.entries, "a failed request persists no turn")
}

func TestResearchNoUsableSources(t *testing.T) {
	store := newMemStore()
	results := fiveSearchResults()
	for i := range results {
		results[i].Snippet = ""
	}
	searchClient := &fakeSearchClient{results: results}
	extract := extractorFunc(func(ctx context.Context, url string) string {
		return "too short"
	})
	model := &fakeLLM{answer: "unused"}

	svc := newTestService(store, searchClient, extract, model)

	_, err := svc.Research(context.Background(), 7, &dto.ResearchRequest{Query: "obscure topic"})

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, serverutils.KindNoSources, apiErr.Kind)
	assert.Empty(t, store.entries)
}

func TestResearchInferenceFailureIsTerminal(t *testing.T) {
	store := newMemStore()
	searchClient := &fakeSearchClient{results: fiveSearchResults()}
	extract := extractorFunc(func(ctx context.Context, url string) string {
		return longArticle(url)
	})
	model := &fakeLLM{err: errors.New("model overloaded")}

	svc := newTestService(store, searchClient, extract, model)

	_, err := svc.Research(context.Background(), 7, &dto.ResearchRequest{Query: "anything at all"})

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, serverutils.KindInferenceFailed, apiErr.Kind)
	assert.Equal(t, 502, apiErr.Status)

	assert.Len(t, store.sessions, 1, "the resolved session outlives the failed turn")
	assert.Empty(t, store.entries)
}

func TestResearchEmptyQuerySkipsSearch(t *testing.T) {
	store := newMemStore()
	searchClient := &fakeSearchClient{results: fiveSearchResults()}
	extract := extractorFunc(func(ctx context.Context, url string) string { return "" })
	model := &fakeLLM{answer: "unused"}

	svc := newTestService(store, searchClient, extract, model)

	_, err := svc.Research(context.Background(), 7, &dto.ResearchRequest{Query: "   "})

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, serverutils.KindValidation, apiErr.Kind)
	assert.Equal(t, 0, searchClient.calls)
	assert.Empty(t, store.sessions)
}

func TestResearchForeignSessionFailsOpenWithoutLeakingMemory(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.sessions = append(store.sessions, &entity.ResearchSession{
		Id: 1, UserId: 99, PrimaryTopic: "someone else's research",
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	store.nextSessionId = 2
	store.entries = append(store.entries, &entity.ResearchEntry{
		Id: 1, SessionId: 1, Query: "their private question",
		Response: "their private answer", CreatedAt: now,
	})
	store.nextEntryId = 2

	searchClient := &fakeSearchClient{results: fiveSearchResults()}
	extract := extractorFunc(func(ctx context.Context, url string) string {
		return longArticle(url)
	})
	model := &fakeLLM{answer: "fresh answer [1]"}

	svc := newTestService(store, searchClient, extract, model)

	res, err := svc.Research(context.Background(), 7, &dto.ResearchRequest{
		Query:     "my question here",
		SessionId: 1,
	})

	require.NoError(t, err, "the answer still comes back")
	assert.Equal(t, "fresh answer [1]", res.Answer)

	userMessage := model.messages[1].Content
	assert.NotContains(t, userMessage, "their private question")
	assert.NotContains(t, userMessage, "their private answer")

	assert.Len(t, store.entries, 1, "nothing is written into the foreign session")
	assert.Equal(t, int64(99), store.sessions[0].UserId)
}

func TestResearchPersistenceFailureDoesNotLoseAnswer(t *testing.T) {
	store := newMemStore()
	store.failEntryCreate = true

	searchClient := &fakeSearchClient{results: fiveSearchResults()}
	extract := extractorFunc(func(ctx context.Context, url string) string {
		return longArticle(url)
	})
	model := &fakeLLM{answer: "answer survives a storage outage [1]"}

	svc := newTestService(store, searchClient, extract, model)

	res, err := svc.Research(context.Background(), 7, &dto.ResearchRequest{Query: "resilience test"})

	require.NoError(t, err)
	assert.Equal(t, "answer survives a storage outage [1]", res.Answer)
	assert.Empty(t, store.entries)
}

func TestGetSessionsIsOwnerScopedAndRecencyOrdered(t *testing.T) {
	store := newMemStore()
	base := time.Now()
	store.sessions = []*entity.ResearchSession{
		{Id: 1, UserId: 7, PrimaryTopic: "older", IsActive: true, UpdatedAt: base},
		{Id: 2, UserId: 99, PrimaryTopic: "foreign", IsActive: true, UpdatedAt: base.Add(2 * time.Hour)},
		{Id: 3, UserId: 7, PrimaryTopic: "newer", IsActive: false, UpdatedAt: base.Add(time.Hour)},
	}
	store.nextSessionId = 4

	svc := newTestService(store, &fakeSearchClient{}, extractorFunc(func(ctx context.Context, url string) string { return "" }), &fakeLLM{})

	sessions, err := svc.GetSessions(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "newer", sessions[0].PrimaryTopic)
	assert.Equal(t, "older", sessions[1].PrimaryTopic)
}

func TestDeleteSessionOwnership(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.sessions = []*entity.ResearchSession{
		{Id: 1, UserId: 7, PrimaryTopic: "mine", IsActive: true, UpdatedAt: now},
	}
	store.nextSessionId = 2
	store.entries = []*entity.ResearchEntry{
		{Id: 1, SessionId: 1, Query: "q", Response: "a", CreatedAt: now},
	}
	store.nextEntryId = 2

	svc := newTestService(store, &fakeSearchClient{}, extractorFunc(func(ctx context.Context, url string) string { return "" }), &fakeLLM{})

	err := svc.DeleteSession(context.Background(), 99, 1)
	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, serverutils.KindNotFound, apiErr.Kind)
	assert.Len(t, store.sessions, 1, "a foreign delete is a no-op")

	require.NoError(t, svc.DeleteSession(context.Background(), 7, 1))
	assert.Empty(t, store.sessions)
	assert.Empty(t, store.entries, "entries go with the session")
}

func TestInferTopic(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"short query kept whole", "quantum computing", "quantum computing"},
		{"five words kept whole", "one two three four five", "one two three four five"},
		{"long query truncated", "one two three four five six seven", "one two three four five..."},
		{"extra whitespace collapsed", "  spaced   out   query  ", "spaced out query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, inferTopic(tt.query))
		})
	}
}
