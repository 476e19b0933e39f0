package unitofwork

import (
	"context"

	"ai-research-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ResearchSessionRepository() contract.ResearchSessionRepository
	ResearchEntryRepository() contract.ResearchEntryRepository
}
