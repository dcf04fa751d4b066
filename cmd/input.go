package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// loadInput decodes the image at path and scales it to width x height. An
// empty path yields a test pattern.
func loadInput(path string, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid output size %dx%d", width, height)
	}
	if path == "" {
		return testPattern(width, height), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input image: %w", err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	b := img.Bounds()
	log.Printf("Loaded %s image %s (%dx%d)", format, path, b.Dx(), b.Dy())
	if b.Dx() == width && b.Dy() == height {
		return img, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, nil
}

var barColors = []color.NRGBA{
	{192, 192, 192, 255},
	{192, 192, 0, 255},
	{0, 192, 192, 255},
	{0, 192, 0, 255},
	{192, 0, 192, 255},
	{192, 0, 0, 255},
	{0, 0, 192, 255},
}

// testPattern draws color bars over a gray ramp.
func testPattern(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	barsHeight := height * 2 / 3
	for i, c := range barColors {
		x0 := i * width / len(barColors)
		x1 := (i + 1) * width / len(barColors)
		draw.Draw(img, image.Rect(x0, 0, x1, barsHeight), image.NewUniform(c), image.Point{}, draw.Src)
	}
	for x := 0; x < width; x++ {
		v := uint8(x * 255 / max(width-1, 1))
		draw.Draw(img, image.Rect(x, barsHeight, x+1, height), image.NewUniform(color.NRGBA{v, v, v, 255}), image.Point{}, draw.Src)
	}
	return img
}
