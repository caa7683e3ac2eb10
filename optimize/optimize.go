// Package optimize runs the whole icon pipeline: shrink the source icon once,
// then inline it into every HTML file that shows it.
package optimize

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/KoviRobi/meowbuild/defaults"
	"github.com/KoviRobi/meowbuild/errkind"
	"github.com/KoviRobi/meowbuild/icon"
	"github.com/KoviRobi/meowbuild/page"
)

type Options struct {
	Source string
	HTML   []string
	MaxDim int
	Colors int

	// Quantize enables palette reduction to Colors entries.
	Quantize bool

	// Out, if set, also receives the optimized PNG.
	Out string

	// AllowMissing skips HTML files that don't exist instead of failing.
	AllowMissing bool
}

func DefaultOptions() Options {
	return Options{
		Source:   defaults.IconSource,
		HTML:     defaults.IconHTML(),
		MaxDim:   defaults.IconMaxDim,
		Colors:   defaults.IconColors,
		Quantize: true,
	}
}

type Result struct {
	Size         image.Point
	PNGBytes     int
	DataURIBytes int

	// Patched files were rewritten, Unchanged already had the URI.
	Patched   []string
	Unchanged []string
	Skipped   []string
}

// Run processes opts.HTML strictly in order. The first failure stops the run;
// files patched before it stay patched.
func Run(opts Options, stdout io.Writer) (Result, error) {
	var res Result

	if _, err := os.Stat(opts.Source); err != nil {
		return res, errkind.Wrap(fmt.Sprintf("missing source image %s", opts.Source), err)
	}

	img, err := icon.LoadAndResize(opts.Source, opts.MaxDim)
	if err != nil {
		return res, err
	}
	res.Size = img.Bounds().Size()

	pngBytes, err := icon.EncodePNG(img, opts.Colors, opts.Quantize)
	if err != nil {
		return res, err
	}
	uri := icon.BuildDataURI(pngBytes)
	res.PNGBytes = len(pngBytes)
	res.DataURIBytes = len(uri)

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, pngBytes, 0o644); err != nil {
			return res, errkind.Wrap("writing optimized png", err)
		}
		log.Printf("Wrote %s", opts.Out)
	}

	for _, path := range opts.HTML {
		changed, err := patchFile(path, uri)
		switch {
		case errors.Is(err, fs.ErrNotExist) && opts.AllowMissing:
			fmt.Fprintf(stdout, "Skipping missing HTML: %s\n", path)
			res.Skipped = append(res.Skipped, path)
		case err != nil:
			return res, err
		case changed:
			res.Patched = append(res.Patched, path)
		default:
			res.Unchanged = append(res.Unchanged, path)
		}
	}

	fmt.Fprintf(stdout, "Optimized %s -> %d bytes PNG, %d bytes data URI.\n",
		opts.Source, res.PNGBytes, res.DataURIBytes)
	return res, nil
}

// patchFile rewrites path only when the patched text differs, so an up to
// date file keeps its timestamp.
func patchFile(path, uri string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, errkind.Wrap(fmt.Sprintf("missing HTML file %s", path), err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, errkind.Wrap(fmt.Sprintf("reading %s", path), err)
	}

	text := string(data)
	updated, err := page.ReplaceImgSrc(text, uri)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if updated == text {
		return false, nil
	}

	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, errkind.Wrap(fmt.Sprintf("writing %s", path), err)
	}
	return true, nil
}
