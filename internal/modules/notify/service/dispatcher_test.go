package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotwatch/internal/modules/notify/domain"
	"shotwatch/internal/platform/clock"
)

type call struct {
	op      string
	payload string
	handle  string
}

type fakeSink struct {
	calls     []call
	uploadErr error
	textErr   error
	videoErr  error
}

func (s *fakeSink) SendText(_ context.Context, message string) error {
	s.calls = append(s.calls, call{op: "text", payload: message})
	return s.textErr
}

func (s *fakeSink) UploadMedia(_ context.Context, path string) (string, error) {
	s.calls = append(s.calls, call{op: "upload", payload: path})
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "media-1", nil
}

func (s *fakeSink) SendVideo(_ context.Context, handle, caption string) error {
	s.calls = append(s.calls, call{op: "video", payload: caption, handle: handle})
	return s.videoErr
}

type fakeLedger struct {
	recorded []domain.Delivery
	err      error
}

func (l *fakeLedger) Record(_ context.Context, d domain.Delivery) error {
	if l.err != nil {
		return l.err
	}
	l.recorded = append(l.recorded, d)
	return nil
}

func (l *fakeLedger) List(context.Context, int) ([]domain.Delivery, error) {
	return l.recorded, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqID struct{ n int }

func (s *seqID) New() string {
	s.n++
	return "d" + string(rune('0'+s.n))
}

var (
	t0       = time.Date(2025, 12, 1, 6, 0, 0, 0, time.UTC)
	t1       = t0.Add(95 * time.Minute)
	detected = t1.Add(3 * time.Minute)
)

func newDispatcher(sink *fakeSink, ledger *fakeLedger) *Dispatcher {
	return NewDispatcher(sink, ledger, fixedClock{now: detected}, &seqID{}, clock.NewZone("PKT", 5))
}

func endNotice(media *domain.Media) domain.EndNotice {
	return domain.EndNotice{
		SubjectID:   "433687",
		SubjectName: "VOID",
		SessionID:   "s1",
		Note:        "blender",
		StartTime:   t0,
		EndTime:     t1,
		DetectedAt:  detected,
		Media:       media,
	}
}

func TestStartSendsText(t *testing.T) {
	t.Parallel()
	sink, ledger := &fakeSink{}, &fakeLedger{}
	d, err := newDispatcher(sink, ledger).Start(context.Background(), domain.StartNotice{SubjectName: "VOID", SessionID: "s1", StartTime: t0})
	require.NoError(t, err)
	require.Len(t, sink.calls, 1)
	assert.Equal(t, "▶ VOID STARTED session \"(no note)\" at 11:00 AM (PKT)", sink.calls[0].payload)
	assert.Equal(t, domain.ChannelText, d.Channel)
	assert.Equal(t, detected, d.SentAt)
	assert.Len(t, ledger.recorded, 1)
}

func TestEndWithArtifactSendsVideo(t *testing.T) {
	t.Parallel()
	sink, ledger := &fakeSink{}, &fakeLedger{}
	avg := 81.4
	d, err := newDispatcher(sink, ledger).End(context.Background(), endNotice(&domain.Media{Path: "/v/clip.mp4", FrameCount: 3, AverageActivity: &avg}))
	require.NoError(t, err)
	require.Len(t, sink.calls, 2)
	assert.Equal(t, "upload", sink.calls[0].op)
	assert.Equal(t, "video", sink.calls[1].op)
	assert.Equal(t, "media-1", sink.calls[1].handle)
	assert.Contains(t, sink.calls[1].payload, "11:00 AM – 12:38 PM PKT (active 1h 35m), 3 screenshots. Avg activity 81%.")
	assert.Equal(t, domain.ChannelVideo, d.Channel)
	assert.Equal(t, "/v/clip.mp4", d.MediaPath)
}

func TestEndUploadFailureFallsBackToText(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{uploadErr: errors.New("413")}
	d, err := newDispatcher(sink, &fakeLedger{}).End(context.Background(), endNotice(&domain.Media{Path: "/v/clip.mp4", FrameCount: 3}))
	require.NoError(t, err)
	require.Len(t, sink.calls, 2)
	assert.Equal(t, "text", sink.calls[1].op)
	assert.Equal(t, "⏹ VOID FINISHED \"blender\" (active 1h 35m) 11:00 AM–12:38 PM PKT", sink.calls[1].payload)
	assert.Equal(t, domain.ChannelText, d.Channel)
	assert.Empty(t, d.MediaPath)
}

func TestEndWithoutArtifactSendsLowercaseSummary(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	_, err := newDispatcher(sink, &fakeLedger{}).End(context.Background(), endNotice(nil))
	require.NoError(t, err)
	require.Len(t, sink.calls, 1)
	assert.Equal(t, "⏹ VOID finished \"blender\" (active 1h 35m) 11:00 AM–12:38 PM PKT", sink.calls[0].payload)
}

func TestSendFailuresPropagate(t *testing.T) {
	t.Parallel()
	_, err := newDispatcher(&fakeSink{textErr: errors.New("down")}, &fakeLedger{}).Start(context.Background(), domain.StartNotice{SubjectName: "VOID"})
	assert.Error(t, err)

	ledger := &fakeLedger{}
	_, err = newDispatcher(&fakeSink{videoErr: errors.New("down")}, ledger).End(context.Background(), endNotice(&domain.Media{Path: "/v/clip.mp4"}))
	assert.Error(t, err)
	assert.Empty(t, ledger.recorded, "failed deliveries are not recorded")
}

func TestLedgerFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	d, err := newDispatcher(&fakeSink{}, &fakeLedger{err: errors.New("disk full")}).End(context.Background(), endNotice(nil))
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
}

func TestDailyUsesCaptionForBothChannels(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	notice := domain.DailyNotice{SubjectID: "1", SubjectName: "Ali", Day: "2025-11-30", TotalSeconds: 3600, Notes: []string{"a"}}
	d, err := newDispatcher(sink, &fakeLedger{}).Daily(context.Background(), notice)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelText, d.Channel)
	assert.Equal(t, "2025-11-30", d.SessionID)

	notice.Media = &domain.Media{Path: "/v/daily.mp4"}
	d, err = newDispatcher(sink, &fakeLedger{}).Daily(context.Background(), notice)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelVideo, d.Channel)
	assert.Equal(t, sink.calls[0].payload, sink.calls[2].payload)
}
