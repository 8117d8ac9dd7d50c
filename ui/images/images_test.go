package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestScaleToFit_PreservesAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 400))
	out := ScaleToFit(src, 200, 200)
	if b := out.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("expected 200x100, got %v", b)
	}
	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if ScaleToFit(small, 200, 200) != image.Image(small) {
		t.Fatalf("image that fits should be returned unchanged")
	}
	if ScaleToFit(nil, 1, 1) != nil {
		t.Fatalf("nil in, nil out")
	}
}

func TestEncodePNG_Decodes(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(1, 1, color.RGBA{9, 8, 7, 255})
	img, err := png.Decode(bytes.NewReader(EncodePNG(src)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r, g, b, _ := img.At(1, 1).RGBA(); r>>8 != 9 || g>>8 != 8 || b>>8 != 7 {
		t.Fatalf("pixel lost in encoding")
	}
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image should encode to nil")
	}
}

func TestDrawGaze_MarksOriginAndRay(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 60, 40))
	DrawGaze(dst, image.Pt(10, 20), image.Pt(50, 20))
	if c := dst.RGBAAt(10, 20); c.G < 200 || c.R > 50 {
		t.Fatalf("origin should be green, got %v", c)
	}
	if c := dst.RGBAAt(35, 20); c.R < 200 || c.G > 50 {
		t.Fatalf("ray should be red, got %v", c)
	}
	if c := dst.RGBAAt(35, 5); c.A != 0 {
		t.Fatalf("pixels away from the ray should be untouched, got %v", c)
	}
}

func TestDrawGaze_ClipsOutsidePoint(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	DrawGaze(dst, image.Pt(5, 5), image.Pt(-400, 900))
	if c := dst.RGBAAt(5, 5); c.G < 200 {
		t.Fatalf("origin should still be drawn, got %v", c)
	}
}
