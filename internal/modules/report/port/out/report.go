package out

import (
	"context"
	"time"

	"shotwatch/internal/modules/report/domain"
)

// ActivityFeed reads a subject's tracked activities and their screenshots.
type ActivityFeed interface {
	ListActivities(ctx context.Context, subjectID string, from, to time.Time) ([]domain.Activity, error)
	ListScreenshots(ctx context.Context, sessionIDs ...string) ([]domain.Shot, error)
}

// Entry is a finished daily summary ready to be journaled.
type Entry struct {
	Summary     domain.Summary
	Channel     string
	Frames      int
	GeneratedAt time.Time
}

// Journal persists one markdown note per subject and day.
type Journal interface {
	Write(ctx context.Context, entry Entry) (string, error)
}
