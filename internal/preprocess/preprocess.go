// Package preprocess converts captured leaf frames into the fixed-geometry,
// normalized pixel buffers the classifier consumes.
package preprocess

import (
	"image"
	"io"
	"os"
	"time"

	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"github.com/disintegration/imaging"
)

// Decode reads an image (JPEG or PNG) from r and normalizes its orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.New(err).
			Component("preprocess").
			Category(errors.CategoryImageDecode).
			Build()
	}
	return img, nil
}

// DecodeFile reads an image from disk.
func DecodeFile(path string) (image.Image, error) {
	start := time.Now()
	f, err := os.Open(path) //nolint:gosec // G304: path is a user-supplied CLI argument
	if err != nil {
		return nil, errors.New(err).
			Component("preprocess").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Timing("image-open", time.Since(start)).
			Build()
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// ToTensor resizes img to a size x size square and rescales pixel intensities
// to the centered [-1, 1] range the model was trained with. The returned
// buffer is row-major RGB, length size*size*3.
func ToTensor(img image.Image, size int) []float32 {
	resized := imaging.Resize(img, size, size, imaging.Lanczos)

	tensor := make([]float32, size*size*3)
	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			// RGBA returns 16-bit channels, scale down to 0..255 first.
			tensor[i] = float32(r>>8)/127.5 - 1.0
			tensor[i+1] = float32(g>>8)/127.5 - 1.0
			tensor[i+2] = float32(b>>8)/127.5 - 1.0
			i += 3
		}
	}
	return tensor
}

// MaxTTAVariants is the upper bound of deterministic test-time augmentation
// variants produced for a single frame.
const MaxTTAVariants = 4

// TTAVariants returns up to four deterministic transforms of img: the
// original, horizontal flip, vertical flip, and an 87.5% center crop. The
// classifier averages their probability vectors elementwise before ranking.
func TTAVariants(img image.Image) []image.Image {
	bounds := img.Bounds()
	cropW := bounds.Dx() * 7 / 8
	cropH := bounds.Dy() * 7 / 8

	variants := []image.Image{
		img,
		imaging.FlipH(img),
		imaging.FlipV(img),
	}
	if cropW > 0 && cropH > 0 {
		variants = append(variants, imaging.CropCenter(img, cropW, cropH))
	}
	return variants
}

// ColorStats holds whole-frame pixel classification ratios used by the
// heuristic fallback classifier.
type ColorStats struct {
	GreenRatio  float64 // share of pixels dominated by green
	YellowRatio float64 // share of yellowish pixels (chlorosis)
	BrownRatio  float64 // share of brownish pixels (necrosis)
}

// DiseaseLoad is the combined share of discolored leaf surface.
func (s ColorStats) DiseaseLoad() float64 {
	return s.YellowRatio + s.BrownRatio
}

// MeasureColors classifies every pixel of img into green, yellow, brown or
// other and returns the ratios over the whole frame. The classification is
// deterministic so repeated scans of the same frame agree.
func MeasureColors(img image.Image) ColorStats {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return ColorStats{}
	}

	var green, yellow, brown int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r := int(r16 >> 8)
			g := int(g16 >> 8)
			b := int(b16 >> 8)

			switch {
			case g > r+20 && g > b+20:
				green++
			case r > 150 && g > 120 && b < 110 && abs(r-g) < 60:
				yellow++
			case r > 60 && r > g && g > b && r-b > 40:
				brown++
			}
		}
	}

	return ColorStats{
		GreenRatio:  float64(green) / float64(total),
		YellowRatio: float64(yellow) / float64(total),
		BrownRatio:  float64(brown) / float64(total),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
