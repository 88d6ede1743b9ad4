package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifydto "shotwatch/internal/modules/notify/dto"
	renderdto "shotwatch/internal/modules/render/dto"
	reportout "shotwatch/internal/modules/report/adapter/out"
	"shotwatch/internal/modules/report/domain"
	"shotwatch/internal/modules/report/dto"
	"shotwatch/internal/modules/report/service"
	"shotwatch/internal/modules/report/usecase"
	"shotwatch/internal/platform/clock"
)

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeFeed struct {
	activities map[string][]domain.Activity
	shots      []domain.Shot
	failFor    string
	shotsErr   error
	lastFrom   time.Time
}

func (f *fakeFeed) ListActivities(_ context.Context, subjectID string, from, _ time.Time) ([]domain.Activity, error) {
	f.lastFrom = from
	if subjectID == f.failFor {
		return nil, errors.New("api down")
	}
	return f.activities[subjectID], nil
}

func (f *fakeFeed) ListScreenshots(context.Context, ...string) ([]domain.Shot, error) {
	return f.shots, f.shotsErr
}

type fakeRender struct {
	input renderdto.RenderInput
	calls int
}

func (r *fakeRender) RenderSession(_ context.Context, in renderdto.RenderInput) (renderdto.RenderOutput, error) {
	r.calls++
	r.input = in
	return renderdto.RenderOutput{Artifact: &renderdto.ArtifactOutput{Path: "/v/daily.mp4", FrameCount: len(in.Shots)}, FrameCount: len(in.Shots)}, nil
}

type fakeNotify struct {
	daily []notifydto.DailyInput
	err   error
}

func (n *fakeNotify) NotifyStart(context.Context, notifydto.StartInput) (notifydto.DeliveryOutput, error) {
	return notifydto.DeliveryOutput{}, nil
}

func (n *fakeNotify) NotifyEnd(context.Context, notifydto.EndInput) (notifydto.DeliveryOutput, error) {
	return notifydto.DeliveryOutput{}, nil
}

func (n *fakeNotify) NotifyDaily(_ context.Context, in notifydto.DailyInput) (notifydto.DeliveryOutput, error) {
	if n.err != nil {
		return notifydto.DeliveryOutput{}, n.err
	}
	n.daily = append(n.daily, in)
	channel := "text"
	if in.Media != nil {
		channel = "video"
	}
	return notifydto.DeliveryOutput{Kind: "daily", Channel: channel}, nil
}

func (n *fakeNotify) History(context.Context, int) ([]notifydto.DeliveryOutput, error) {
	return nil, nil
}

func (n *fakeNotify) Groups(context.Context) ([]notifydto.GroupOutput, error) { return nil, nil }

var (
	zone = clock.NewZone("PKT", 5)
	now  = time.Date(2025, 12, 1, 4, 0, 0, 0, time.UTC)
	day  = time.Date(2025, 11, 29, 19, 0, 0, 0, time.UTC)
)

func newInteractor(t *testing.T, feed *fakeFeed, render *fakeRender, notify *fakeNotify) (*service.SummaryService, func(context.Context, dto.DailyInput) (dto.DailyOutput, error)) {
	t.Helper()
	svc := service.NewSummaryService(feed, reportout.NewJournalStore(t.TempDir(), zone), fakeClock{now: now}, zone)
	uc := usecase.NewInteractor(svc, render, notify, 60)
	return svc, uc.Daily
}

func TestDailySendsSummaryWithTimelapse(t *testing.T) {
	t.Parallel()
	end := day.Add(10 * time.Hour)
	level := 70
	feed := &fakeFeed{
		activities: map[string][]domain.Activity{
			"1": {{SessionID: "s1", StartTime: day.Add(4 * time.Hour), EndTime: &end, Note: "Argonics shading"}},
		},
		shots: []domain.Shot{
			{ID: "a", SessionID: "s1", CapturedAt: day.Add(5 * time.Hour), ImageURL: "u", ActivityLevel: &level},
			{ID: "b", SessionID: "s1", CapturedAt: day.Add(-time.Hour), ImageURL: "u"},
		},
	}
	render, notify := &fakeRender{}, &fakeNotify{}
	_, daily := newInteractor(t, feed, render, notify)

	out, err := daily(context.Background(), dto.DailyInput{Subjects: []dto.Subject{{ID: "1", DisplayName: "Ali"}}})
	require.NoError(t, err)
	assert.Equal(t, "2025-11-30", out.Day)
	assert.True(t, feed.lastFrom.Equal(day), "yesterday in the zone")
	require.Len(t, out.Reports, 1)
	report := out.Reports[0]
	assert.Equal(t, "video", report.Channel)
	assert.Equal(t, int64(6*3600), report.TotalSeconds)
	assert.NotEmpty(t, report.JournalPath)

	assert.Equal(t, 60, render.input.MaxFrames)
	assert.Len(t, render.input.Shots, 1, "screenshots outside the day are dropped")
	require.Len(t, notify.daily, 1)
	assert.Equal(t, []string{"Argonics shading"}, notify.daily[0].Notes)
	assert.Equal(t, 1, notify.daily[0].Media.FrameCount)
}

func TestDailySkipsFailingAndEmptySubjects(t *testing.T) {
	t.Parallel()
	feed := &fakeFeed{failFor: "2", activities: map[string][]domain.Activity{}}
	render, notify := &fakeRender{}, &fakeNotify{}
	_, daily := newInteractor(t, feed, render, notify)

	out, err := daily(context.Background(), dto.DailyInput{Subjects: []dto.Subject{{ID: "1", DisplayName: "Ali"}, {ID: "2", DisplayName: "Sara"}}})
	require.NoError(t, err)
	require.Len(t, out.Reports, 2)
	assert.True(t, out.Reports[0].Skipped)
	assert.Equal(t, "no entries", out.Reports[0].Reason)
	assert.True(t, out.Reports[1].Skipped)
	assert.Empty(t, notify.daily)
	assert.Zero(t, render.calls)
}

func TestDailyFallsBackToTextWhenScreenshotsFail(t *testing.T) {
	t.Parallel()
	end := day.Add(2 * time.Hour)
	feed := &fakeFeed{
		activities: map[string][]domain.Activity{"1": {{SessionID: "s1", StartTime: day.Add(time.Hour), EndTime: &end}}},
		shotsErr:   errors.New("timeout"),
	}
	render, notify := &fakeRender{}, &fakeNotify{}
	_, daily := newInteractor(t, feed, render, notify)

	out, err := daily(context.Background(), dto.DailyInput{Subjects: []dto.Subject{{ID: "1", DisplayName: "Ali"}}, Day: day.Add(12 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "text", out.Reports[0].Channel)
	assert.Nil(t, notify.daily[0].Media)
	assert.Empty(t, notify.daily[0].Notes)
	assert.Zero(t, render.calls)
}

func TestDailySendFailureAborts(t *testing.T) {
	t.Parallel()
	end := day.Add(2 * time.Hour)
	feed := &fakeFeed{activities: map[string][]domain.Activity{"1": {{SessionID: "s1", StartTime: day.Add(time.Hour), EndTime: &end}}}}
	_, daily := newInteractor(t, feed, &fakeRender{}, &fakeNotify{err: errors.New("network")})
	_, err := daily(context.Background(), dto.DailyInput{Subjects: []dto.Subject{{ID: "1", DisplayName: "Ali"}}})
	assert.Error(t, err)
}
