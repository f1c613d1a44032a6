package htmlshot

import (
	"image"
	"image/color"
	"testing"
)

func TestStitch(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	parts := []*Image{
		NewImage("p1.png", 1, Segment{End: 5}, testPNG(t, 10, 5, red)),
		NewImage("p2.png", 2, Segment{Start: 5, End: 12}, testPNG(t, 10, 7, blue)),
	}

	img, err := Stitch(parts)
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 10 || b.Dy() != 12 {
		t.Fatalf("stitched size = %dx%d, want 10x12", b.Dx(), b.Dy())
	}
	if got := color.RGBAModel.Convert(img.At(3, 4)); got != red {
		t.Errorf("pixel (3,4) = %v, want red", got)
	}
	if got := color.RGBAModel.Convert(img.At(3, 5)); got != blue {
		t.Errorf("pixel (3,5) = %v, want blue", got)
	}
}

func TestStitch_ResamplesNarrowParts(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	parts := []*Image{
		NewImage("p1.png", 1, Segment{}, testPNG(t, 3, 2, red)),
		NewImage("p2.png", 2, Segment{}, testPNG(t, 9, 3, color.White)),
	}
	img, err := Stitch(parts)
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}
	// 3x2 scaled to the 9px canvas becomes 9x6.
	if b := img.Bounds(); b.Dx() != 9 || b.Dy() != 9 {
		t.Fatalf("stitched size = %dx%d, want 9x9", b.Dx(), b.Dy())
	}
	for _, x := range []int{0, 4, 8} {
		r, g, b, _ := img.At(x, 3).RGBA()
		if r < 0xfe00 || g > 0x0200 || b > 0x0200 {
			t.Errorf("pixel (%d,3) = %v, want red across the full width", x, img.At(x, 3))
		}
	}
	if got := color.RGBAModel.Convert(img.At(4, 7)); got != color.RGBAModel.Convert(color.White) {
		t.Errorf("pixel (4,7) = %v, want white", got)
	}
}

func TestScaledHeight(t *testing.T) {
	tests := []struct {
		w, h, width, want int
	}{
		{9, 3, 9, 3},
		{3, 2, 9, 6},
		{899, 1000, 900, 1001},
		{4, 2, 9, 5},
	}
	for _, tt := range tests {
		if got := scaledHeight(image.Rect(0, 0, tt.w, tt.h), tt.width); got != tt.want {
			t.Errorf("scaledHeight(%dx%d, %d) = %d, want %d", tt.w, tt.h, tt.width, got, tt.want)
		}
	}
}

func TestStitch_Errors(t *testing.T) {
	if _, err := Stitch(nil); err == nil {
		t.Error("expected error for no images")
	}
	bad := []*Image{NewImage("bad.png", 1, Segment{}, []byte("garbage"))}
	if _, err := Stitch(bad); err == nil {
		t.Error("expected error for undecodable image")
	}
}
