package out

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"shotwatch/internal/modules/render/domain"
	renderout "shotwatch/internal/modules/render/port/out"
	"shotwatch/internal/platform/logging"
)

var log = logging.MustGetLogger("render")

const (
	DefaultFontSize = 22
	overlayMargin   = 10
	boxPadX         = 6
	boxPadY         = 4
)

// OverlayPainter draws white caption text on a black box in the bottom-left
// corner, using the embedded Go font.
type OverlayPainter struct {
	face font.Face
}

func NewOverlayPainter(size float64) (renderout.Painter, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse overlay font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("load overlay font: %w", err)
	}
	return &OverlayPainter{face: face}, nil
}

// Fit downscales with CatmullRom when img is wider than targetWidth. The
// result is always a fresh RGBA the caller may draw on.
func (p *OverlayPainter) Fit(img image.Image, targetWidth int) image.Image {
	b := img.Bounds()
	w, h := domain.FitWidth(b.Dx(), b.Dy(), targetWidth)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func (p *OverlayPainter) Annotate(img image.Image, lines []string) image.Image {
	canvas, ok := img.(*image.RGBA)
	if !ok {
		canvas = image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
		draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	if len(lines) == 0 {
		return canvas
	}

	metrics := p.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	textWidth := 0
	for _, line := range lines {
		if w := font.MeasureString(p.face, line).Ceil(); w > textWidth {
			textWidth = w
		}
	}
	textHeight := lineHeight * len(lines)
	bounds := canvas.Bounds()
	x := bounds.Min.X + overlayMargin
	y := bounds.Max.Y - textHeight - overlayMargin

	box := image.Rect(x-boxPadX, y-boxPadY, x+textWidth+boxPadX, y+textHeight+boxPadY).Intersect(bounds)
	draw.Draw(canvas, box, image.NewUniform(color.Black), image.Point{}, draw.Src)

	drawer := font.Drawer{Dst: canvas, Src: image.NewUniform(color.White), Face: p.face}
	for i, line := range lines {
		baseline := y + i*lineHeight + metrics.Ascent.Ceil()
		drawer.Dot = fixed.P(x, baseline)
		drawer.DrawString(line)
	}
	return canvas
}
