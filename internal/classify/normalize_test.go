package classify

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
	"go.viam.com/test"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNormalizeChannel(t *testing.T) {
	test.That(t, NormalizeChannel(0), test.ShouldEqual, float32(-1))
	test.That(t, NormalizeChannel(255), test.ShouldEqual, float32(1))
	test.That(t, float64(NormalizeChannel(127)), test.ShouldAlmostEqual, 0, 0.01)
	test.That(t, float64(NormalizeChannel(128)), test.ShouldAlmostEqual, 0, 0.01)
	for c := 0; c < 256; c++ {
		want := (float64(c) - 127.5) / 127.5
		test.That(t, float64(NormalizeChannel(uint8(c))), test.ShouldAlmostEqual, want, 1e-6)
	}
}

func TestNormalizeLength(t *testing.T) {
	for _, tc := range []struct{ srcW, srcH, w, h int }{
		{37, 19, 224, 224},
		{640, 480, 224, 224},
		{1, 1, 3, 5},
		{300, 300, 128, 96},
	} {
		tensor := Normalize(solid(tc.srcW, tc.srcH, color.Gray{Y: 40}), tc.w, tc.h, imaging.Linear)
		test.That(t, tensor, test.ShouldHaveLength, tc.w*tc.h*3)
	}
}

func TestNormalizeSolidRed(t *testing.T) {
	red := solid(50, 30, color.RGBA{R: 255, A: 255})
	for _, filter := range []imaging.ResampleFilter{imaging.Linear, imaging.CatmullRom, imaging.Lanczos} {
		tensor := Normalize(red, 8, 6, filter)
		test.That(t, tensor, test.ShouldHaveLength, 8*6*3)
		for i := 0; i < len(tensor); i += 3 {
			test.That(t, tensor[i], test.ShouldEqual, float32(1))
			test.That(t, tensor[i+1], test.ShouldEqual, float32(-1))
			test.That(t, tensor[i+2], test.ShouldEqual, float32(-1))
		}
	}
}

func TestNormalizeOrder(t *testing.T) {
	// left column blue, right column green, same size so no blending
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	blue := color.RGBA{B: 255, A: 255}
	green := color.RGBA{G: 255, A: 255}
	img.Set(0, 0, blue)
	img.Set(0, 1, blue)
	img.Set(1, 0, green)
	img.Set(1, 1, green)

	tensor := Normalize(img, 2, 2, imaging.Linear)
	want := []float32{
		-1, -1, 1, -1, 1, -1,
		-1, -1, 1, -1, 1, -1,
	}
	test.That(t, tensor, test.ShouldResemble, want)
}

func TestResampleStretches(t *testing.T) {
	out := Resample(solid(400, 100, color.White), 224, 224, imaging.Linear)
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 224)
	test.That(t, out.Bounds().Dy(), test.ShouldEqual, 224)
}

func TestParseFilter(t *testing.T) {
	for name, support := range map[string]float64{
		"":           imaging.Linear.Support,
		"linear":     imaging.Linear.Support,
		"Bilinear":   imaging.Linear.Support,
		"catmullrom": imaging.CatmullRom.Support,
		"lanczos":    imaging.Lanczos.Support,
	} {
		f, err := ParseFilter(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, f.Support, test.ShouldEqual, support)
	}

	_, err := ParseFilter("nearest")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "nearest")
}

func TestNormalizeRange(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: uint8(x * y), A: 255})
		}
	}
	for _, v := range Normalize(img, 7, 9, imaging.Lanczos) {
		test.That(t, math.Abs(float64(v)), test.ShouldBeLessThanOrEqualTo, 1)
	}
}
