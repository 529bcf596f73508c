package extract

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

// grayImage builds a w x h image filled with value fill.
func grayImage(w, h int, fill uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: fill})
		}
	}
	return img
}

func TestOtsuThresholdSeparatesBimodal(t *testing.T) {
	// Left half dark ink, right half bright paper.
	img := grayImage(20, 10, 30)
	for y := 0; y < 10; y++ {
		for x := 10; x < 20; x++ {
			img.SetGray(x, y, color.Gray{Y: 220})
		}
	}

	threshold := otsuThreshold(img)
	assert.GreaterOrEqual(t, threshold, uint8(30))
	assert.Less(t, threshold, uint8(220))
}

func TestOtsuThresholdUniformImage(t *testing.T) {
	assert.Zero(t, otsuThreshold(grayImage(8, 8, 128)))
}

func TestBinarizeProducesOnlyBlackAndWhite(t *testing.T) {
	img := grayImage(10, 10, 100)
	img.SetGray(3, 3, color.Gray{Y: 200})

	out := binarize(img, 128)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := out.GrayAt(x, y).Y
			assert.True(t, v == 0 || v == 255, "pixel (%d,%d) = %d", x, y, v)
		}
	}
	assert.EqualValues(t, 255, out.GrayAt(3, 3).Y)
	assert.EqualValues(t, 0, out.GrayAt(0, 0).Y)
}

func TestMedianBlurRemovesSpeck(t *testing.T) {
	img := grayImage(11, 11, 255)
	img.SetGray(5, 5, color.Gray{Y: 0}) // single dark noise pixel

	out := medianBlur(img, 2)
	assert.EqualValues(t, 255, out.GrayAt(5, 5).Y)
}

func TestMedianBlurZeroRadiusIsIdentity(t *testing.T) {
	img := grayImage(4, 4, 77)
	assert.Same(t, img, medianBlur(img, 0))
}

func TestPreprocessBinarizesScan(t *testing.T) {
	// Text-like block on a light background survives as black on white.
	img := grayImage(30, 30, 230)
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			img.SetGray(x, y, color.Gray{Y: 20})
		}
	}

	out := preprocess(img, 1)
	assert.EqualValues(t, 0, out.GrayAt(15, 15).Y)
	assert.EqualValues(t, 255, out.GrayAt(2, 2).Y)
}
