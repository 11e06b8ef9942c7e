// Package annotate renders detection overlays: box outlines, label
// text and the base64-PNG encoding both inference variants and the
// relabel utility emit.
package annotate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

func drawRect(img *image.RGBA, x1, y1, x2, y2, thickness int, col color.Color) {
	bounds := img.Bounds()

	setPixel := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.Set(x, y, col)
		}
	}

	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			setPixel(x, y1+t)
			setPixel(x, y2-t)
		}
		for y := y1; y <= y2; y++ {
			setPixel(x1+t, y)
			setPixel(x2-t, y)
		}
	}
}

func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// drawLabel renders text on a filled background so it stays readable
// over the photo. y is the top of the label strip.
func drawLabel(img *image.RGBA, x, y int, text string, bg color.Color) {
	width := font.MeasureString(basicfont.Face7x13, text).Ceil()
	height := basicfont.Face7x13.Height + 4

	if y < img.Bounds().Min.Y {
		y = img.Bounds().Min.Y
	}

	strip := image.Rect(x, y, x+width+4, y+height)
	draw.Draw(img, strip.Intersect(img.Bounds()), image.NewUniform(bg), image.Point{}, draw.Src)
	drawText(img, x+2, y+basicfont.Face7x13.Ascent+2, text, color.White)
}

// EncodeBase64PNG re-encodes the image as PNG and base64-encodes it.
func EncodeBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeBase64Image decodes a base64 payload in any registered raster
// format.
func DecodeBase64Image(encoded string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
