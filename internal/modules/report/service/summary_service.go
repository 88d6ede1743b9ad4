package service

import (
	"context"
	"fmt"
	"time"

	"shotwatch/internal/modules/report/domain"
	reportout "shotwatch/internal/modules/report/port/out"
	"shotwatch/internal/platform/clock"
	"shotwatch/internal/platform/logging"
)

var log = logging.MustGetLogger("report")

type SummaryService struct {
	feed    reportout.ActivityFeed
	journal reportout.Journal
	clock   clock.Clock
	zone    clock.Zone
}

func NewSummaryService(feed reportout.ActivityFeed, journal reportout.Journal, clock clock.Clock, zone clock.Zone) *SummaryService {
	return &SummaryService{feed: feed, journal: journal, clock: clock, zone: zone}
}

// Window resolves the reporting day. A zero day means yesterday in the zone.
func (s *SummaryService) Window(day time.Time) clock.Window {
	if day.IsZero() {
		return s.zone.Yesterday(s.clock.Now())
	}
	return s.zone.Day(day)
}

func (s *SummaryService) Summarize(ctx context.Context, subjectID, subjectName string, window clock.Window) (domain.Summary, error) {
	activities, err := s.feed.ListActivities(ctx, subjectID, window.From, window.To)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("list activities for %s: %w", subjectName, err)
	}
	summary := domain.Summarize(subjectID, subjectName, s.zone.Date(window.From), window.From, window.To, activities)
	log.Infof("%s: %d sessions, %ds tracked on %s", subjectName, len(summary.Sessions), summary.TotalSeconds, summary.Day)
	return summary, nil
}

// Screenshots lists the day's screenshots. Failure is reported to the caller,
// which sends the summary without a timelapse.
func (s *SummaryService) Screenshots(ctx context.Context, summary domain.Summary) ([]domain.Shot, error) {
	if summary.Empty() {
		return nil, nil
	}
	shots, err := s.feed.ListScreenshots(ctx, summary.SessionIDs()...)
	if err != nil {
		return nil, fmt.Errorf("list screenshots for %s: %w", summary.SubjectName, err)
	}
	inWindow := make([]domain.Shot, 0, len(shots))
	for _, shot := range shots {
		if shot.CapturedAt.IsZero() || (!shot.CapturedAt.Before(summary.From) && shot.CapturedAt.Before(summary.To)) {
			inWindow = append(inWindow, shot)
		}
	}
	return inWindow, nil
}

func (s *SummaryService) Journal(ctx context.Context, summary domain.Summary, channel string, frames int) (string, error) {
	if s.journal == nil {
		return "", nil
	}
	return s.journal.Write(ctx, reportout.Entry{Summary: summary, Channel: channel, Frames: frames, GeneratedAt: s.clock.Now()})
}
