package out

import (
	"context"
	"time"

	"shotwatch/internal/modules/report/domain"
	reportout "shotwatch/internal/modules/report/port/out"
	"shotwatch/internal/platform/ssm"
)

type SSMFeed struct {
	client *ssm.Client
}

func NewSSMFeed(client *ssm.Client) reportout.ActivityFeed {
	return &SSMFeed{client: client}
}

func (f *SSMFeed) ListActivities(ctx context.Context, subjectID string, from, to time.Time) ([]domain.Activity, error) {
	raw, err := f.client.GetActivities(ctx, subjectID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Activity, 0, len(raw))
	for _, a := range raw {
		activity := domain.Activity{SessionID: string(a.ActivityID), Note: a.Note}
		if a.From > 0 {
			activity.StartTime = time.Unix(a.From, 0).UTC()
		}
		if a.To != nil && *a.To > 0 {
			end := time.Unix(*a.To, 0).UTC()
			activity.EndTime = &end
		}
		out = append(out, activity)
	}
	return out, nil
}

// ListScreenshots fetches the screenshots of several activities in one call
// and keeps only those belonging to them.
func (f *SSMFeed) ListScreenshots(ctx context.Context, sessionIDs ...string) ([]domain.Shot, error) {
	raw, err := f.client.GetScreenshots(ctx, sessionIDs...)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = true
	}
	out := make([]domain.Shot, 0, len(raw))
	for _, s := range raw {
		if !wanted[string(s.ActivityID)] {
			continue
		}
		apps := make([]domain.App, 0, len(s.Applications))
		for _, a := range s.Applications {
			apps = append(apps, domain.App{Name: a.Name, DurationSeconds: a.Duration, Foreground: a.FromScreen})
		}
		shot := domain.Shot{
			ID:            string(s.ID),
			SessionID:     string(s.ActivityID),
			ImageURL:      s.URL,
			ActivityLevel: s.ActivityLevel,
			Apps:          apps,
		}
		if s.Taken > 0 {
			shot.CapturedAt = time.Unix(s.Taken, 0).UTC()
		}
		out = append(out, shot)
	}
	return out, nil
}
