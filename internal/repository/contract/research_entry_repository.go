package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
)

// ResearchEntryRepository is append-only: entries are immutable once written.
type ResearchEntryRepository interface {
	Create(ctx context.Context, entry *entity.ResearchEntry) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
