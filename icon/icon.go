// Package icon shrinks an image and turns it into an inline PNG data URI.
package icon

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/soniakeys/quant/median"
	"golang.org/x/image/draw"

	"github.com/KoviRobi/meowbuild/defaults"
	"github.com/KoviRobi/meowbuild/errkind"
)

// MaxColors is the largest palette a paletted PNG can carry.
const MaxColors = 256

var (
	ErrPaletteSize  = errors.New("palette size out of range")
	ErrEmptyPalette = errors.New("quantizer produced an empty palette")
	// ErrPartialAlpha is returned because the median-cut palette is opaque and
	// translucent pixels would lose their alpha.
	ErrPartialAlpha = errors.New("image has partially transparent pixels")
)

// LoadAndResize decodes the image at path as non-premultiplied RGBA and
// shrinks it with Resize.
func LoadAndResize(path string, maxDim int) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errkind.Wrap("opening image", err)
	}
	defer f.Close()

	src, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w: %w", path, errkind.ErrMalformed, err)
	}
	return Resize(src, maxDim), nil
}

// Resize scales img uniformly so neither side exceeds maxDim, using Lanczos
// resampling. Images that already fit, and any maxDim <= 0, come back as an
// unscaled NRGBA copy.
func Resize(img image.Image, maxDim int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || max(w, h) <= maxDim {
		return imaging.Clone(img)
	}

	scale := float64(maxDim) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

// Quantize reduces img to an adaptive palette of at most colors entries and
// dithers it with Floyd-Steinberg error diffusion. Images with fully
// transparent pixels get a transparent palette entry; images with any other
// alpha below opaque are refused with ErrPartialAlpha.
func Quantize(img image.Image, colors int) (p *image.Paletted, err error) {
	if colors < 1 || colors > MaxColors {
		return nil, fmt.Errorf("%w: %d", ErrPaletteSize, colors)
	}
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("quantizer panicked: %v", r)
		}
	}()

	transparent, partial := alphaLevels(img)
	if partial {
		return nil, ErrPartialAlpha
	}
	n := colors
	if transparent && n > 1 {
		n--
	}
	pal := median.Quantizer(n).Quantize(make(color.Palette, 0, n), img)
	if len(pal) == 0 {
		return nil, ErrEmptyPalette
	}
	if len(pal) > n {
		pal = pal[:n]
	}
	if transparent {
		if len(pal) >= colors {
			pal = pal[:colors-1]
		}
		pal = append(pal, color.Transparent)
	}

	b := img.Bounds()
	p = image.NewPaletted(b, pal)
	draw.FloydSteinberg.Draw(p, b, img, b.Min)
	return p, nil
}

// alphaLevels reports whether img has fully transparent pixels and whether
// it has pixels that are neither transparent nor opaque.
func alphaLevels(img image.Image) (transparent, partial bool) {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return false, false
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			switch _, _, _, a := img.At(x, y).RGBA(); a {
			case 0xffff:
			case 0:
				transparent = true
			default:
				return transparent, true
			}
		}
	}
	return transparent, false
}

// EncodePNG serialises img at best compression. With quantize set and a
// positive colors it first tries Quantize; a quantization failure falls back
// to the full-colour image and is not reported.
func EncodePNG(img image.Image, colors int, quantize bool) ([]byte, error) {
	target := img
	if quantize && colors > 0 {
		if p, err := Quantize(img, colors); err == nil {
			target = p
		}
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, target); err != nil {
		return nil, fmt.Errorf("encoding png: %w: %w", errkind.ErrIO, err)
	}
	return buf.Bytes(), nil
}

// BuildDataURI wraps PNG bytes as a data: URI.
func BuildDataURI(pngBytes []byte) string {
	return defaults.DataURIPrefix + base64.StdEncoding.EncodeToString(pngBytes)
}

// DecodeDataURI is the inverse of BuildDataURI.
func DecodeDataURI(uri string) ([]byte, error) {
	payload, ok := strings.CutPrefix(uri, defaults.DataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("not a PNG data URI: %w", errkind.ErrMalformed)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI payload: %w: %w", errkind.ErrMalformed, err)
	}
	return data, nil
}
