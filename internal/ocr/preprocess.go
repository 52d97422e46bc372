package ocr

import (
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"
)

// Preprocess prepares a scan for recognition: grayscale, contrast boost,
// slight sharpening, then a 3x3 median denoise.
func Preprocess(img image.Image) *image.NRGBA {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 25)
	out = imaging.Sharpen(out, 1.0)
	return medianFilter3(out)
}

// medianFilter3 applies a 3x3 median filter. Input is grayscale so only one
// channel needs the median; alpha is preserved.
func medianFilter3(src *image.NRGBA) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	window := make([]uint8, 0, 9)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			window = window[:0]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
						continue
					}
					window = append(window, src.NRGBAAt(nx, ny).R)
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			v := window[len(window)/2]
			a := src.NRGBAAt(x, y).A
			dst.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: a})
		}
	}
	return dst
}
