package out

import (
	"context"
	"image"
)

// ImageFetcher downloads and decodes one screenshot.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// Painter scales frames and draws the caption overlay.
type Painter interface {
	Fit(img image.Image, targetWidth int) image.Image
	Annotate(img image.Image, lines []string) image.Image
}

// Encoder opens a writer for a new artifact at path. Nothing is created on
// disk until Open is called.
type Encoder interface {
	Open(ctx context.Context, path string, fps int) (FrameWriter, error)
	Ext() string
}

// FrameWriter receives frames in display order. Close finalizes the
// artifact; Abort discards it.
type FrameWriter interface {
	WriteFrame(img image.Image) error
	Close() error
	Abort()
}
