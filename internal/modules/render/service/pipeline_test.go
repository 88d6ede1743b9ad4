package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotwatch/internal/modules/render/domain"
	renderout "shotwatch/internal/modules/render/port/out"
	"shotwatch/internal/platform/clock"
)

type fakeFetcher struct {
	fail map[string]bool
	size image.Point
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (image.Image, error) {
	if f.fail[url] {
		return nil, errors.New("boom")
	}
	return image.NewRGBA(image.Rectangle{Max: f.size}), nil
}

type recordingPainter struct {
	widths []int
	lines  [][]string
}

func (p *recordingPainter) Fit(img image.Image, targetWidth int) image.Image {
	b := img.Bounds()
	w, h := domain.FitWidth(b.Dx(), b.Dy(), targetWidth)
	p.widths = append(p.widths, w)
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func (p *recordingPainter) Annotate(img image.Image, lines []string) image.Image {
	p.lines = append(p.lines, lines)
	rgba := img.(*image.RGBA)
	rgba.Set(0, 0, color.White)
	return rgba
}

type memoryEncoder struct {
	mu      sync.Mutex
	opened  []string
	frames  int
	closed  bool
	aborted bool
	failAt  int
}

func (e *memoryEncoder) Ext() string { return "mp4" }

func (e *memoryEncoder) Open(_ context.Context, path string, _ int) (renderout.FrameWriter, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opened = append(e.opened, path)
	return e, nil
}

func (e *memoryEncoder) WriteFrame(image.Image) error {
	e.frames++
	if e.failAt > 0 && e.frames == e.failAt {
		return errors.New("encoder died")
	}
	return nil
}

func (e *memoryEncoder) Close() error { e.closed = true; return nil }
func (e *memoryEncoder) Abort()       { e.aborted = true }

func intp(v int) *int { return &v }

var start = time.Date(2025, 12, 1, 6, 0, 0, 0, time.UTC)

func newPipeline(t *testing.T, fetcher *fakeFetcher, painter *recordingPainter, encoder *memoryEncoder) *Pipeline {
	t.Helper()
	return NewPipeline(Options{OutputDir: t.TempDir(), TargetWidth: 1280, FPS: 2, NoteMaxLen: 60, Zone: clock.NewZone("PKT", 5)}, fetcher, painter, encoder)
}

func TestRenderOrdersFramesAndSkipsFailures(t *testing.T) {
	t.Parallel()
	fetcher := &fakeFetcher{fail: map[string]bool{"u2": true}, size: image.Pt(2560, 1440)}
	painter := &recordingPainter{}
	encoder := &memoryEncoder{}
	p := newPipeline(t, fetcher, painter, encoder)

	out, err := p.Render(context.Background(), domain.Job{
		SubjectName: "VOID",
		SessionID:   "77",
		Note:        "blender",
		StartedAt:   start,
		Shots: []domain.Shot{
			{ID: "3", ImageURL: "u3", CapturedAt: start.Add(30 * time.Minute), ActivityLevel: intp(90)},
			{ID: "1", ImageURL: "u1", CapturedAt: start.Add(10 * time.Minute), ActivityLevel: intp(80)},
			{ID: "2", ImageURL: "u2", CapturedAt: start.Add(20 * time.Minute), ActivityLevel: intp(40)},
			{ID: "4", CapturedAt: start.Add(40 * time.Minute)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.FrameCount)
	assert.Equal(t, 2, out.Skipped)
	require.NotNil(t, out.AverageActivity)
	assert.InDelta(t, 70.0, *out.AverageActivity, 0.001, "average covers every shot, including skipped ones")
	assert.True(t, out.HasArtifact())
	assert.True(t, encoder.closed)

	require.Len(t, painter.lines, 2)
	assert.Equal(t, "VOID | 2025-12-01 11:10", painter.lines[0][0])
	assert.Equal(t, "VOID | 2025-12-01 11:30", painter.lines[1][0])
	assert.Equal(t, []int{1280, 1280}, painter.widths)
	require.Len(t, encoder.opened, 1)
	assert.Contains(t, encoder.opened[0], "void_2025-12-01_77.mp4")
}

func TestRenderWithoutUsableFramesHasNoArtifact(t *testing.T) {
	t.Parallel()
	encoder := &memoryEncoder{}
	p := newPipeline(t, &fakeFetcher{fail: map[string]bool{"u1": true}}, &recordingPainter{}, encoder)
	out, err := p.Render(context.Background(), domain.Job{
		SubjectName: "VOID",
		SessionID:   "77",
		StartedAt:   start,
		Shots:       []domain.Shot{{ID: "1", ImageURL: "u1", CapturedAt: start}},
	})
	require.NoError(t, err)
	assert.False(t, out.HasArtifact())
	assert.Equal(t, 1, out.Skipped)
	assert.Empty(t, encoder.opened, "no artifact should be opened")
}

func TestRenderCapsFrames(t *testing.T) {
	t.Parallel()
	encoder := &memoryEncoder{}
	p := newPipeline(t, &fakeFetcher{size: image.Pt(100, 50)}, &recordingPainter{}, encoder)
	shots := make([]domain.Shot, 0, 5)
	for n := 0; n < 5; n++ {
		shots = append(shots, domain.Shot{ID: string(rune('a' + n)), ImageURL: "u", CapturedAt: start.Add(time.Duration(n) * time.Minute)})
	}
	out, err := p.Render(context.Background(), domain.Job{SubjectName: "VOID", SessionID: "daily", StartedAt: start, Shots: shots, MaxFrames: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, out.FrameCount)
	assert.Equal(t, 3, encoder.frames)
}

func TestRenderEncoderFailureIsReturned(t *testing.T) {
	t.Parallel()
	encoder := &memoryEncoder{failAt: 1}
	p := newPipeline(t, &fakeFetcher{size: image.Pt(100, 50)}, &recordingPainter{}, encoder)
	_, err := p.Render(context.Background(), domain.Job{
		SubjectName: "VOID",
		SessionID:   "77",
		StartedAt:   start,
		Shots:       []domain.Shot{{ID: "1", ImageURL: "u", CapturedAt: start}},
	})
	require.Error(t, err)
	assert.True(t, encoder.aborted)
}
