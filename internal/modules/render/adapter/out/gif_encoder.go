package out

import (
	"context"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"

	renderout "shotwatch/internal/modules/render/port/out"
)

// GIFEncoder writes an animated GIF with the Plan9 palette. Frames are held
// paletted in memory until Close.
type GIFEncoder struct{}

func NewGIFEncoder() renderout.Encoder {
	return &GIFEncoder{}
}

func (e *GIFEncoder) Ext() string { return "gif" }

func (e *GIFEncoder) Open(_ context.Context, path string, fps int) (renderout.FrameWriter, error) {
	if fps <= 0 {
		fps = 1
	}
	return &gifWriter{path: path, delay: 100 / fps}, nil
}

type gifWriter struct {
	path  string
	delay int
	size  image.Point
	anim  gif.GIF
}

func (w *gifWriter) WriteFrame(img image.Image) error {
	if w.size == (image.Point{}) {
		w.size = img.Bounds().Size()
	}
	frame := image.NewPaletted(image.Rectangle{Max: w.size}, palette.Plan9)
	draw.FloydSteinberg.Draw(frame, frame.Bounds(), conform(img, w.size), image.Point{})
	w.anim.Image = append(w.anim.Image, frame)
	w.anim.Delay = append(w.anim.Delay, w.delay)
	return nil
}

func (w *gifWriter) Close() error {
	if len(w.anim.Image) == 0 {
		return fmt.Errorf("gif %s has no frames", w.path)
	}
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	if err := gif.EncodeAll(f, &w.anim); err != nil {
		f.Close()
		os.Remove(w.path)
		return fmt.Errorf("encode gif: %w", err)
	}
	return f.Close()
}

func (w *gifWriter) Abort() {
	w.anim = gif.GIF{}
}
