package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/search"
)

// memStore backs the fake repositories. The fakes interpret the same
// specification values the GORM layer does, so session ownership and
// ordering semantics are exercised without a database.
type memStore struct {
	sessions      []*entity.ResearchSession
	entries       []*entity.ResearchEntry
	nextSessionId int64
	nextEntryId   int64

	failSessionReads bool
	failEntryCreate  bool
}

func newMemStore() *memStore {
	return &memStore{nextSessionId: 1, nextEntryId: 1}
}

// --- session repository ---

type fakeSessionRepo struct {
	store *memStore
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ResearchSession) error {
	session.Id = r.store.nextSessionId
	r.store.nextSessionId++
	r.store.sessions = append(r.store.sessions, session)
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ResearchSession) error {
	for i, s := range r.store.sessions {
		if s.Id == session.Id {
			r.store.sessions[i] = session
			return nil
		}
	}
	return fmt.Errorf("session %d not found", session.Id)
}

func (r *fakeSessionRepo) Touch(ctx context.Context, id int64, at time.Time) error {
	for _, s := range r.store.sessions {
		if s.Id == id {
			s.UpdatedAt = at
			return nil
		}
	}
	return fmt.Errorf("session %d not found", id)
}

func (r *fakeSessionRepo) DeleteOwned(ctx context.Context, id, userId int64) (bool, error) {
	for i, s := range r.store.sessions {
		if s.Id == id && s.UserId == userId {
			r.store.sessions = append(r.store.sessions[:i], r.store.sessions[i+1:]...)
			kept := r.store.entries[:0]
			for _, e := range r.store.entries {
				if e.SessionId != id {
					kept = append(kept, e)
				}
			}
			r.store.entries = kept
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchSession, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchSession, error) {
	if r.store.failSessionReads {
		return nil, fmt.Errorf("storage unavailable")
	}

	matches := make([]*entity.ResearchSession, 0, len(r.store.sessions))
	for _, s := range r.store.sessions {
		if matchSession(s, specs) {
			matches = append(matches, s)
		}
	}
	for _, spec := range specs {
		if order, ok := spec.(specification.OrderBy); ok && order.Field == "updated_at" {
			sort.SliceStable(matches, func(i, j int) bool {
				if order.Desc {
					return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
				}
				return matches[i].UpdatedAt.Before(matches[j].UpdatedAt)
			})
		}
	}
	return matches, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	return int64(len(matches)), err
}

func matchSession(s *entity.ResearchSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.OwnedBy:
			if s.UserId != v.UserID {
				return false
			}
		case specification.ActiveOnly:
			if !s.IsActive {
				return false
			}
		}
	}
	return true
}

// --- entry repository ---

type fakeEntryRepo struct {
	store *memStore
}

func (r *fakeEntryRepo) Create(ctx context.Context, entry *entity.ResearchEntry) error {
	if r.store.failEntryCreate {
		return fmt.Errorf("insert failed")
	}
	entry.Id = r.store.nextEntryId
	r.store.nextEntryId++
	r.store.entries = append(r.store.entries, entry)
	return nil
}

func (r *fakeEntryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchEntry, error) {
	matches := make([]*entity.ResearchEntry, 0, len(r.store.entries))
	for _, e := range r.store.entries {
		if matchEntry(e, specs) {
			matches = append(matches, e)
		}
	}

	limit := -1
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.OrderBy:
			if v.Field == "created_at" {
				sort.SliceStable(matches, func(i, j int) bool {
					if v.Desc {
						return matches[i].CreatedAt.After(matches[j].CreatedAt)
					}
					return matches[i].CreatedAt.Before(matches[j].CreatedAt)
				})
			}
		case specification.Limit:
			limit = v.Count
		}
	}
	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *fakeEntryRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	return int64(len(matches)), err
}

func matchEntry(e *entity.ResearchEntry, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.BySessionID:
			if e.SessionId != v.SessionID {
				return false
			}
		case specification.WithEmbedding:
			if len(e.QueryEmbedding) == 0 {
				return false
			}
		}
	}
	return true
}

// --- unit of work ---

type fakeUnitOfWork struct {
	store   *memStore
	inTx    bool
	commits int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	u.inTx = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	u.inTx = false
	u.commits++
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	u.inTx = false
	return nil
}

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	panic("not used in these tests")
}

func (u *fakeUnitOfWork) ResearchSessionRepository() contract.ResearchSessionRepository {
	return &fakeSessionRepo{store: u.store}
}

func (u *fakeUnitOfWork) ResearchEntryRepository() contract.ResearchEntryRepository {
	return &fakeEntryRepo{store: u.store}
}

type fakeFactory struct {
	store *memStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

// --- collaborators ---

type fakeSearchClient struct {
	results []search.Result
	err     error
	calls   int
}

func (c *fakeSearchClient) Search(ctx context.Context, query string, num int) ([]search.Result, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.results, nil
}

type extractorFunc func(ctx context.Context, url string) string

func (f extractorFunc) Extract(ctx context.Context, url string) string {
	return f(ctx, url)
}

type fakeLLM struct {
	answer   string
	err      error
	messages []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.messages = history
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
