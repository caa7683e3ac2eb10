package optimize

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoviRobi/meowbuild/errkind"
	"github.com/KoviRobi/meowbuild/icon"
	"github.com/KoviRobi/meowbuild/page"
	. "github.com/KoviRobi/meowbuild/test_utils"
)

func setup(t *testing.T, w, h int) (string, Options) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Source = WritePNG(t, dir, "web/cat-icon.png", Gradient(w, h))
	opts.HTML = []string{WriteFile(t, dir, "web/index.html", HTML(OldSrc))}
	return dir, opts
}

func decodeSrc(t *testing.T, path string) image.Image {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	src, err := page.ImgSrc(string(data))
	require.NoError(t, err)
	pngBytes, err := icon.DecodeDataURI(src)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(pngBytes))
	require.NoError(t, err)
	return img
}

func TestRunNoQuantize(t *testing.T) {
	_, opts := setup(t, 40, 20)
	opts.Quantize = false
	opts.MaxDim = 16

	var out bytes.Buffer
	res, err := Run(opts, &out)
	require.NoError(t, err)
	assert.Equal(t, opts.HTML, res.Patched)
	assert.Equal(t, image.Pt(16, 8), res.Size)

	img := decodeSrc(t, opts.HTML[0])
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
	assert.Contains(t, out.String(), "bytes PNG")
}

func TestRunQuantizedWritesOut(t *testing.T) {
	dir, opts := setup(t, 24, 24)
	opts.Out = filepath.Join(dir, "cat-icon.min.png")

	res, err := Run(opts, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(opts.Out)
	require.NoError(t, err)
	assert.Len(t, data, res.PNGBytes)

	img := decodeSrc(t, opts.HTML[0])
	assert.IsType(t, &image.Paletted{}, img)
	assert.Equal(t, image.Rect(0, 0, 24, 24), img.Bounds())
}

func TestRunKeepsTranslucentEdges(t *testing.T) {
	dir, opts := setup(t, 8, 8)
	src := Translucent(12, 6)
	opts.Source = WritePNG(t, dir, "web/soft.png", src)

	_, err := Run(opts, &bytes.Buffer{})
	require.NoError(t, err)

	img := decodeSrc(t, opts.HTML[0])
	require.IsType(t, &image.NRGBA{}, img)
	assert.Equal(t, src.Pix, img.(*image.NRGBA).Pix)
}

func TestRunIsIdempotent(t *testing.T) {
	_, opts := setup(t, 8, 8)
	opts.Quantize = false
	_, err := Run(opts, &bytes.Buffer{})
	require.NoError(t, err)

	before := Backdate(t, opts.HTML[0])
	res, err := Run(opts, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, opts.HTML, res.Unchanged)
	assert.Empty(t, res.Patched)
	AssertUntouched(t, opts.HTML[0], before)
}

func TestRunMissingSource(t *testing.T) {
	_, opts := setup(t, 8, 8)
	opts.Source = filepath.Join(t.TempDir(), "nope.png")

	_, err := Run(opts, &bytes.Buffer{})
	assert.ErrorIs(t, err, errkind.ErrNotFound)

	data, err := os.ReadFile(opts.HTML[0])
	require.NoError(t, err)
	assert.Equal(t, HTML(OldSrc), string(data))
}

func TestRunMissingHTML(t *testing.T) {
	dir, opts := setup(t, 8, 8)
	missing := filepath.Join(dir, "web/other.html")
	opts.HTML = []string{missing, opts.HTML[0]}

	_, err := Run(opts, &bytes.Buffer{})
	assert.ErrorIs(t, err, errkind.ErrNotFound)

	opts.AllowMissing = true
	var out bytes.Buffer
	res, err := Run(opts, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{missing}, res.Skipped)
	assert.Equal(t, opts.HTML[1:], res.Patched)
	assert.Contains(t, out.String(), "Skipping missing HTML: "+missing)
}

func TestRunStopsAtFirstBadFile(t *testing.T) {
	dir, opts := setup(t, 8, 8)
	bad := WriteFile(t, dir, "web/bad.html", "<p>no cat here</p>")
	after := WriteFile(t, dir, "web/after.html", HTML(OldSrc))
	opts.HTML = append(opts.HTML, bad, after)

	_, err := Run(opts, &bytes.Buffer{})
	assert.ErrorIs(t, err, page.ErrMarkerNotFound)

	// Files before the failure stay written, files after are not touched.
	decodeSrc(t, opts.HTML[0])
	data, err := os.ReadFile(after)
	require.NoError(t, err)
	assert.Equal(t, HTML(OldSrc), string(data))
}
