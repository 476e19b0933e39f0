package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
)

// Manager owns the persisted side of research sessions. All session-scoped
// operations are keyed by the owning user.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// ResolveOrCreate returns the user's most recently updated active session,
// creating one when none exists. Concurrent calls for the same user may race
// into two active sessions; last-writer-wins is acceptable, callers always
// pick the most recently updated one.
func (m *Manager) ResolveOrCreate(ctx context.Context, uow unitofwork.UnitOfWork, userId int64, inferredTopic string) (int64, error) {
	existing, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return 0, fmt.Errorf("resolve session: %w", err)
	}
	if existing != nil {
		return existing.Id, nil
	}

	topic := inferredTopic
	if topic == "" {
		topic = entity.SentinelTopic
	}

	now := time.Now()
	newSession := entity.ResearchSession{
		UserId:       userId,
		PrimaryTopic: topic,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uow.ResearchSessionRepository().Create(ctx, &newSession); err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return newSession.Id, nil
}

// AppendEntry stores one immutable research turn and touches the session.
// Ownership is re-checked so a foreign session id cannot be written into.
func (m *Manager) AppendEntry(ctx context.Context, uow unitofwork.UnitOfWork, userId int64, entry *entity.ResearchEntry) error {
	owned, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: entry.SessionId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return fmt.Errorf("verify session: %w", err)
	}
	if owned == nil {
		return fmt.Errorf("session %d not found for user %d", entry.SessionId, userId)
	}

	if err := uow.ResearchEntryRepository().Create(ctx, entry); err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	if err := uow.ResearchSessionRepository().Touch(ctx, entry.SessionId, time.Now()); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// BackfillTopic replaces the sentinel topic with the first words of the
// query. A no-op once the topic is specific.
func (m *Manager) BackfillTopic(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId int64, query string) error {
	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.PrimaryTopic != entity.SentinelTopic {
		return nil
	}

	words := strings.Fields(query)
	if len(words) > 6 {
		words = words[:6]
	}
	session.PrimaryTopic = strings.Join(words, " ")
	session.UpdatedAt = time.Now()

	if err := uow.ResearchSessionRepository().Update(ctx, session); err != nil {
		return fmt.Errorf("update topic: %w", err)
	}
	return nil
}

// List returns the user's sessions, most recently updated first.
func (m *Manager) List(ctx context.Context, uow unitofwork.UnitOfWork, userId int64) ([]*entity.ResearchSession, error) {
	return uow.ResearchSessionRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
}

// DeleteOwned removes the session when it belongs to the user; entries go
// with it via the FK cascade.
func (m *Manager) DeleteOwned(ctx context.Context, uow unitofwork.UnitOfWork, sessionId, userId int64) (bool, error) {
	return uow.ResearchSessionRepository().DeleteOwned(ctx, sessionId, userId)
}
