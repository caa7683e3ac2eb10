// Package page patches the src of the marked cat <img> in an HTML document.
//
// The document is edited as text: only the bytes of the one attribute value
// change, so formatting, comments and everything else survive exactly.
package page

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/KoviRobi/meowbuild/defaults"
	"github.com/KoviRobi/meowbuild/errkind"
)

var (
	ErrMarkerNotFound  = fmt.Errorf("could not find cat image marker: %w", errkind.ErrMalformed)
	ErrTagNotFound     = fmt.Errorf("could not find <img> tag for cat image: %w", errkind.ErrMalformed)
	ErrTagUnterminated = fmt.Errorf("could not find end of <img> tag for cat image: %w", errkind.ErrMalformed)
	ErrSrcNotFound     = fmt.Errorf("could not find src attribute for cat image: %w", errkind.ErrMalformed)
	ErrSrcUnterminated = fmt.Errorf("could not find end of src attribute for cat image: %w", errkind.ErrMalformed)
)

// ReplaceImgSrc sets the src of the <img> tag carrying the cat-img marker to
// uri. On error doc is returned as is. Replacing with the same uri twice is a
// no-op the second time.
func ReplaceImgSrc(doc, uri string) (string, error) {
	start, end, err := locateSrc(doc)
	if err != nil {
		return doc, err
	}
	return doc[:start] + uri + doc[end:], nil
}

// ImgSrc returns the current src of the marked <img> tag.
func ImgSrc(doc string) (string, error) {
	start, end, err := locateSrc(doc)
	if err != nil {
		return "", err
	}
	return doc[start:end], nil
}

// locateSrc returns the byte range of the marked tag's src value, quotes
// excluded.
func locateSrc(doc string) (int, int, error) {
	marker := strings.Index(doc, defaults.CatImgMarker)
	if marker < 0 {
		return 0, 0, ErrMarkerNotFound
	}

	tagStart := strings.LastIndex(doc[:marker], "<img")
	if tagStart < 0 {
		return 0, 0, ErrTagNotFound
	}
	tagEnd, err := endOfTag(doc, tagStart)
	if err != nil {
		return 0, 0, err
	}
	if marker+len(defaults.CatImgMarker) > tagEnd {
		// The nearest <img> closes before the marker, so the marker belongs
		// to some other element.
		return 0, 0, ErrTagNotFound
	}

	tag := doc[tagStart:tagEnd]
	for _, quote := range []byte{'"', '\''} {
		key := "src=" + string(quote)
		i := attrIndex(tag, key)
		if i < 0 {
			continue
		}
		valueStart := tagStart + i + len(key)
		n := strings.IndexByte(doc[valueStart:tagEnd], quote)
		if n < 0 {
			return 0, 0, ErrSrcUnterminated
		}
		return valueStart, valueStart + n, nil
	}
	return 0, 0, ErrSrcNotFound
}

// endOfTag returns the offset just past the '>' closing the tag at start.
// The tokenizer knows about quoted attribute values, so a '>' inside one
// does not end the tag.
func endOfTag(doc string, start int) (int, error) {
	z := html.NewTokenizer(strings.NewReader(doc[start:]))
	tt := z.Next()
	if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
		return 0, ErrTagUnterminated
	}
	raw := z.Raw()
	if !bytes.HasSuffix(raw, []byte(">")) {
		return 0, ErrTagUnterminated
	}
	end := start + len(raw)
	if name, _ := z.TagName(); string(name) != "img" {
		// e.g. <imgx ...>
		return 0, ErrTagNotFound
	}
	return end, nil
}

// attrIndex finds key at the start of an attribute, so src= doesn't match
// inside data-src=. An attribute may follow whitespace or the closing quote
// of the previous one.
func attrIndex(tag, key string) int {
	for off := 0; ; {
		i := strings.Index(tag[off:], key)
		if i < 0 {
			return -1
		}
		i += off
		if i > 0 && (isSpace(tag[i-1]) || tag[i-1] == '"' || tag[i-1] == '\'') {
			return i
		}
		off = i + 1
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
