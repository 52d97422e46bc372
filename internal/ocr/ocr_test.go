package ocr

import (
	"image"
	"image/color"
	"testing"
)

func TestTokenConfidenceAveragesPositiveOnly(t *testing.T) {
	tokens := []ocrToken{
		{Text: "umowa", Confidence: 90},
		{Text: "sprzedaży", Confidence: 70},
		{Text: "", Confidence: -1},
		{Text: " ", Confidence: 0},
	}
	got := TokenConfidence(tokens)
	want := 0.80
	if got != want {
		t.Fatalf("TokenConfidence = %v, want %v", got, want)
	}
}

func TestTokenConfidenceNoUsableTokens(t *testing.T) {
	if got := TokenConfidence(nil); got != 0.0 {
		t.Fatalf("TokenConfidence(nil) = %v, want 0", got)
	}
	if got := TokenConfidence([]ocrToken{{Confidence: -1}}); got != 0.0 {
		t.Fatalf("TokenConfidence(non-word) = %v, want 0", got)
	}
}

func TestPreprocessProducesGrayscale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	out := Preprocess(src)
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v -> %v", src.Bounds(), out.Bounds())
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			px := out.NRGBAAt(x, y)
			if px.R != px.G || px.G != px.B {
				t.Fatalf("pixel (%d,%d) not grayscale: %+v", x, y, px)
			}
		}
	}
}

func TestMedianFilterRemovesSaltNoise(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
		}
	}
	// Single bright outlier in the middle.
	src.SetNRGBA(2, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out := medianFilter3(src)
	if got := out.NRGBAAt(2, 2).R; got != 10 {
		t.Fatalf("outlier survived median filter: %d", got)
	}
}
