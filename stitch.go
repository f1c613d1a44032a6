package htmlshot

import (
	"errors"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Stitch stacks images vertically in the order given on a canvas as wide as
// the widest image. Stitching the parts of a segmented run reproduces the
// whole-page capture of the same layout.
//
// Parts rasterized at a fractional scale can come out a pixel narrower than
// their siblings; such parts are resampled to the canvas width, keeping
// their aspect ratio.
func Stitch(images []*Image) (image.Image, error) {
	if len(images) == 0 {
		return nil, errors.New("htmlshot: nothing to stitch")
	}
	decoded := make([]image.Image, 0, len(images))
	width := 0
	for _, img := range images {
		d, err := img.Decode()
		if err != nil {
			return nil, err
		}
		width = max(width, d.Bounds().Dx())
		decoded = append(decoded, d)
	}

	height := 0
	for _, d := range decoded {
		height += scaledHeight(d.Bounds(), width)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	y := 0
	for _, d := range decoded {
		b := d.Bounds()
		h := scaledHeight(b, width)
		dst := image.Rect(0, y, width, y+h)
		if b.Dx() == width {
			draw.Draw(canvas, dst, d, b.Min, draw.Src)
		} else {
			draw.CatmullRom.Scale(canvas, dst, d, b, draw.Src, nil)
		}
		y += h
	}
	return canvas, nil
}

// scaledHeight returns the height of b once resized to width.
func scaledHeight(b image.Rectangle, width int) int {
	if b.Dx() == width || b.Dx() == 0 {
		return b.Dy()
	}
	return int(math.Round(float64(b.Dy()) * float64(width) / float64(b.Dx())))
}
