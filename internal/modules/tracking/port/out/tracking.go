package out

import (
	"context"
	"time"

	"shotwatch/internal/modules/tracking/domain"
)

// ActivitySource is the time-tracking service. An empty result is not an
// error.
type ActivitySource interface {
	ListActivities(ctx context.Context, subjectID string, from, to time.Time) ([]domain.Activity, error)
	ListScreenshots(ctx context.Context, sessionID string) ([]domain.Screenshot, error)
}

// StateStore persists notification flags. Load returns an empty state when
// the document is missing or unreadable as JSON.
type StateStore interface {
	Load(ctx context.Context) (*domain.State, error)
	Save(ctx context.Context, state *domain.State) error
}
