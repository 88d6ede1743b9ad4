package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"shotwatch/internal/modules/render/domain"
	renderout "shotwatch/internal/modules/render/port/out"
	"shotwatch/internal/platform/clock"
	"shotwatch/internal/platform/logging"
	"shotwatch/internal/platform/slug"
)

var log = logging.MustGetLogger("render")

var errNoImageURL = errors.New("screenshot has no image url")

type Options struct {
	OutputDir   string
	TargetWidth int
	FPS         int
	NoteMaxLen  int
	Zone        clock.Zone
}

type Pipeline struct {
	opts    Options
	fetcher renderout.ImageFetcher
	painter renderout.Painter
	encoder renderout.Encoder
}

func NewPipeline(opts Options, fetcher renderout.ImageFetcher, painter renderout.Painter, encoder renderout.Encoder) *Pipeline {
	if opts.TargetWidth <= 0 {
		opts.TargetWidth = domain.DefaultTargetWidth
	}
	if opts.FPS <= 0 {
		opts.FPS = domain.DefaultFPS
	}
	if opts.NoteMaxLen <= 0 {
		opts.NoteMaxLen = domain.DefaultNoteMaxLen
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Pipeline{opts: opts, fetcher: fetcher, painter: painter, encoder: encoder}
}

// ArtifactPath is <output>/<subject>_<local start date>_<session>.<ext>.
func (p *Pipeline) ArtifactPath(job domain.Job) string {
	name := fmt.Sprintf("%s_%s_%s.%s", slug.Make(job.SubjectName), p.opts.Zone.Date(job.StartedAt), slug.Make(job.SessionID), p.encoder.Ext())
	return filepath.Join(p.opts.OutputDir, name)
}

// Render fetches the shots in capture order and streams every usable frame
// into one artifact. Failed frames are counted and skipped. Zero usable
// frames is not an error: the result simply carries no artifact.
func (p *Pipeline) Render(ctx context.Context, job domain.Job) (domain.Timelapse, error) {
	result := domain.Timelapse{AverageActivity: domain.AverageActivity(job.Shots)}
	shots := domain.Cap(domain.SortShots(job.Shots), job.MaxFrames)
	path := p.ArtifactPath(job)

	var writer renderout.FrameWriter
	for _, shot := range shots {
		if err := ctx.Err(); err != nil {
			if writer != nil {
				writer.Abort()
			}
			return domain.Timelapse{}, err
		}
		frame := p.prepare(ctx, job, shot)
		if !frame.OK() {
			log.Warningf("%s: skipping screenshot %s: %v", job.SubjectName, shot.ID, frame.Err)
			result.Skipped++
			continue
		}
		if writer == nil {
			if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
				return domain.Timelapse{}, fmt.Errorf("create output dir: %w", err)
			}
			w, err := p.encoder.Open(ctx, path, p.opts.FPS)
			if err != nil {
				return domain.Timelapse{}, fmt.Errorf("open encoder for %s: %w", path, err)
			}
			writer = w
		}
		if err := writer.WriteFrame(frame.Image); err != nil {
			writer.Abort()
			return domain.Timelapse{}, fmt.Errorf("encode frame %s: %w", shot.ID, err)
		}
		result.FrameCount++
	}

	if writer == nil {
		return result, nil
	}
	if err := writer.Close(); err != nil {
		return domain.Timelapse{}, fmt.Errorf("finalize %s: %w", path, err)
	}
	result.Path = path
	log.Infof("%s: wrote %s (%d frames, %d skipped)", job.SubjectName, path, result.FrameCount, result.Skipped)
	return result, nil
}

func (p *Pipeline) prepare(ctx context.Context, job domain.Job, shot domain.Shot) domain.FrameResult {
	if shot.ImageURL == "" {
		return domain.FrameResult{Shot: shot, Err: errNoImageURL}
	}
	img, err := p.fetcher.Fetch(ctx, shot.ImageURL)
	if err != nil {
		return domain.FrameResult{Shot: shot, Err: err}
	}
	img = p.painter.Fit(img, p.opts.TargetWidth)
	lines := domain.OverlayLines(job.SubjectName, p.opts.Zone.Stamp(shot.CapturedAt), shot, job.Note, p.opts.NoteMaxLen)
	return domain.FrameResult{Shot: shot, Image: p.painter.Annotate(img, lines)}
}
