package out

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestHTTPImageFetcherDecodesPNG(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, solid(4, 3, color.White)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shot.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	fetcher := NewHTTPImageFetcher(srv.Client())
	img, err := fetcher.Fetch(context.Background(), srv.URL+"/shot.png")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 3), img.Bounds().Size())

	_, err = fetcher.Fetch(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)
}

func TestOverlayPainterFitAndAnnotate(t *testing.T) {
	t.Parallel()
	painter, err := NewOverlayPainter(0)
	require.NoError(t, err)

	fitted := painter.Fit(solid(400, 300, color.White), 200)
	assert.Equal(t, image.Pt(200, 150), fitted.Bounds().Size())
	small := painter.Fit(solid(100, 80, color.White), 200)
	assert.Equal(t, image.Pt(100, 80), small.Bounds().Size())

	annotated := painter.Annotate(painter.Fit(solid(640, 360, color.White), 1280), []string{"VOID | 2025-12-01 11:44", "Activity: 88% | App: blender"})
	boxBottom := annotated.Bounds().Max.Y - overlayMargin + boxPadY
	r, g, b, _ := annotated.At(overlayMargin+2, boxBottom-1).RGBA()
	assert.Zero(t, r+g+b, "overlay box should be black on its last row")
	r, g, b, _ = annotated.At(overlayMargin+2, boxBottom).RGBA()
	assert.Equal(t, uint32(0xffff*3), r+g+b, "margin below the overlay box stays untouched")
	r, g, b, _ = annotated.At(630, 10).RGBA()
	assert.Equal(t, uint32(0xffff*3), r+g+b, "top-right corner stays untouched")
}

func TestGIFEncoderWritesAllFrames(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "clip.gif")
	enc := NewGIFEncoder()
	assert.Equal(t, "gif", enc.Ext())
	w, err := enc.Open(context.Background(), path, 2)
	require.NoError(t, err)
	require.NoError(t, w.WriteFrame(solid(20, 10, color.White)))
	require.NoError(t, w.WriteFrame(solid(40, 20, color.Black)))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	require.Len(t, anim.Image, 2)
	assert.Equal(t, []int{50, 50}, anim.Delay)
	assert.Equal(t, image.Pt(20, 10), anim.Image[1].Bounds().Size(), "frames conform to the first frame size")
}

func TestFFmpegEncoderWritesMP4(t *testing.T) {
	t.Parallel()
	bin, err := LookFFmpeg()
	if err != nil {
		t.Skipf("ffmpeg not available: %v", err)
	}
	path := filepath.Join(t.TempDir(), "clip.mp4")
	w, err := NewFFmpegEncoder(bin).Open(context.Background(), path, 2)
	require.NoError(t, err)
	for n := 0; n < 3; n++ {
		require.NoError(t, w.WriteFrame(solid(65, 33, color.White)))
	}
	require.NoError(t, w.Close())
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestEvenSize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, image.Pt(64, 32), evenSize(image.Pt(65, 33)))
	assert.Equal(t, image.Pt(2, 2), evenSize(image.Pt(1, 1)))
}
