package out

import (
	"context"
	"time"

	"shotwatch/internal/modules/tracking/domain"
	trackingout "shotwatch/internal/modules/tracking/port/out"
	"shotwatch/internal/platform/ssm"
)

// SSMSource adapts the ScreenshotMonitor client to the activity source port.
type SSMSource struct {
	client *ssm.Client
}

func NewSSMSource(client *ssm.Client) trackingout.ActivitySource {
	return &SSMSource{client: client}
}

func (s *SSMSource) ListActivities(ctx context.Context, subjectID string, from, to time.Time) ([]domain.Activity, error) {
	raw, err := s.client.GetActivities(ctx, subjectID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Activity, 0, len(raw))
	for _, a := range raw {
		out = append(out, ActivityFromSSM(subjectID, a))
	}
	return out, nil
}

// ListScreenshots drops records that belong to other activities; the API
// does not guarantee the filter.
func (s *SSMSource) ListScreenshots(ctx context.Context, sessionID string) ([]domain.Screenshot, error) {
	raw, err := s.client.GetScreenshots(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Screenshot, 0, len(raw))
	for _, shot := range raw {
		if string(shot.ActivityID) != sessionID {
			continue
		}
		out = append(out, ScreenshotFromSSM(shot))
	}
	return out, nil
}

func ActivityFromSSM(subjectID string, a ssm.Activity) domain.Activity {
	activity := domain.Activity{
		SubjectID: subjectID,
		SessionID: string(a.ActivityID),
		Note:      a.Note,
	}
	if a.From > 0 {
		activity.StartTime = time.Unix(a.From, 0).UTC()
	}
	if a.To != nil && *a.To > 0 {
		end := time.Unix(*a.To, 0).UTC()
		activity.EndTime = &end
	}
	return activity
}

func ScreenshotFromSSM(s ssm.Screenshot) domain.Screenshot {
	apps := make([]domain.AppUsage, 0, len(s.Applications))
	for _, a := range s.Applications {
		apps = append(apps, domain.AppUsage{Name: a.Name, DurationSeconds: a.Duration, Foreground: a.FromScreen})
	}
	shot := domain.Screenshot{
		ID:            string(s.ID),
		SessionID:     string(s.ActivityID),
		ImageURL:      s.URL,
		ActivityLevel: s.ActivityLevel,
		Applications:  apps,
	}
	if s.Taken > 0 {
		shot.CapturedAt = time.Unix(s.Taken, 0).UTC()
	}
	return shot
}
