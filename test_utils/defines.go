package test_utils

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

const (
	OldVersion = "v0.1.0"
	NewVersion = "v1.2.3"
	OldSrc     = "old.png"

	HeaderTemplate = `#pragma once

// Generated by inject-version, do not edit by hand.
#define VERSION_MAJOR 1
#define VERSION_STR "%s"
`

	HTMLTemplate = `<!doctype html>
<html>
<head><title>MeowMeow</title></head>
<body>
  <img class="logo" src="logo.png">
  <img alt="cat" class="cat-img" src="%s" width="64">
  <p>Lamp &gt; off</p>
</body>
</html>
`
)

func Header(version string) string {
	return fmt.Sprintf(HeaderTemplate, version)
}

func HTML(src string) string {
	return fmt.Sprintf(HTMLTemplate, src)
}

// WriteFile writes content under dir, creating parents, and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	Assert(t, os.MkdirAll(filepath.Dir(path), 0o755))
	Assert(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Gradient is a w x h image with a colour gradient and a transparent corner,
// so quantization and alpha handling both have something to do.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(0xff)
			if x < w/4 && y < h/4 {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) % 256),
				A: a,
			})
		}
	}
	return img
}

// WritePNG encodes img to dir/name and returns the path.
func WritePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	Assert(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	Assert(t, err)
	defer f.Close()
	Assert(t, png.Encode(f, img))
	return path
}

// Translucent is like Gradient but with alpha ramping from 0 to 255 across x,
// the way anti-aliased icon edges look.
func Translucent(w, h int) *image.NRGBA {
	img := Gradient(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[img.PixOffset(x, y)+3] = uint8(x * 255 / max(w-1, 1))
		}
	}
	return img
}
