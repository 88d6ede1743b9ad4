package out

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// conform returns img as an RGBA of exactly size, scaling when the frame
// dimensions differ from the first frame of the artifact.
func conform(img image.Image, size image.Point) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && b.Size() == size {
		return rgba
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	if b.Size() == size {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// evenSize rounds both dimensions down to even numbers, as yuv420p requires.
func evenSize(p image.Point) image.Point {
	x, y := p.X&^1, p.Y&^1
	if x < 2 {
		x = 2
	}
	if y < 2 {
		y = 2
	}
	return image.Pt(x, y)
}
