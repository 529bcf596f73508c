package extract

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// preprocess prepares a scanned image for OCR: grayscale conversion, median
// blur denoise, then Otsu binary threshold.
func preprocess(src image.Image, medianRadius int) *image.Gray {
	gray := toGray(imaging.Grayscale(src))
	denoised := medianBlur(gray, medianRadius)
	return binarize(denoised, otsuThreshold(denoised))
}

func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, color.GrayModel.Convert(src.At(x, y)))
		}
	}
	return out
}

// medianBlur replaces each pixel with the median of its (2r+1)x(2r+1)
// neighborhood, clamped at the image border.
func medianBlur(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		return src
	}
	b := src.Bounds()
	out := image.NewGray(b)
	var hist [256]int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			for i := range hist {
				hist[i] = 0
			}
			n := 0
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					px, py := x+dx, y+dy
					if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
						continue
					}
					hist[src.GrayAt(px, py).Y]++
					n++
				}
			}
			mid := n / 2
			acc := 0
			for v := 0; v < 256; v++ {
				acc += hist[v]
				if acc > mid {
					out.SetGray(x, y, color.Gray{Y: uint8(v)})
					break
				}
			}
		}
	}
	return out
}

// otsuThreshold picks the global threshold maximizing between-class variance.
func otsuThreshold(src *image.Gray) uint8 {
	var hist [256]int
	b := src.Bounds()
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[src.GrayAt(x, y).Y]++
			total++
		}
	}
	if total == 0 {
		return 0
	}

	var sum float64
	for v, c := range hist {
		sum += float64(v) * float64(c)
	}

	var sumB, wB float64
	var best float64
	var threshold uint8
	for v := 0; v < 256; v++ {
		wB += float64(hist[v])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(v) * float64(hist[v])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(v)
		}
	}
	return threshold
}

func binarize(src *image.Gray, threshold uint8) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.GrayAt(x, y).Y > threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}
