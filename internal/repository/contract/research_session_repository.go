package contract

import (
	"context"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
)

type ResearchSessionRepository interface {
	Create(ctx context.Context, session *entity.ResearchSession) error
	Update(ctx context.Context, session *entity.ResearchSession) error
	// Touch bumps updated_at so "most recently updated" ordering stays honest
	// without rewriting the whole row.
	Touch(ctx context.Context, id int64, at time.Time) error
	// DeleteOwned removes the session only when it belongs to userId and
	// reports whether a row was removed. Entries cascade at the FK level.
	DeleteOwned(ctx context.Context, id, userId int64) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
