// Package version keeps include/version.h in step with the VERSION file.
package version

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/KoviRobi/meowbuild/defaults"
	"github.com/KoviRobi/meowbuild/errkind"
)

// Paths are the two files the injector touches.
type Paths struct {
	VersionFile string
	Header      string
}

// DefaultPaths resolves the usual layout under a project root.
func DefaultPaths(root string) Paths {
	return Paths{
		VersionFile: filepath.Join(root, defaults.VersionFile),
		Header:      filepath.Join(root, filepath.FromSlash(defaults.VersionHeader)),
	}
}

// Stray comment markers, e.g. a VERSION written as "// v1.2.3"
var leadingSlashesRe = regexp.MustCompile(`^/+\s*`)

// Group 1 is the quoted value.
var macroRe = regexp.MustCompile(`#define\s+VERSION_STR\s+"([^"]*)"`)

// Normalize turns raw VERSION contents into a version string, which may be
// empty.
func Normalize(raw string) string {
	v := leadingSlashesRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if i := strings.IndexAny(v, "\r\n"); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// ReadVersion reads the version from path. A missing or blank file is not an
// error: it gives defaults.FallbackVersion.
func ReadVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults.FallbackVersion, nil
		}
		return "", errkind.Wrap("reading version", err)
	}

	v := Normalize(string(data))
	if v == "" {
		return defaults.FallbackVersion, nil
	}
	if err := validate(v); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// A value must survive being put back between the macro's quotes, otherwise
// the next run would no longer find it.
func validate(v string) error {
	for _, r := range v {
		if r == '"' || r == '\\' || unicode.IsControl(r) {
			return fmt.Errorf("version %q contains %q: %w", v, r, errkind.ErrMalformed)
		}
	}
	return nil
}

// ReplaceVersion rewrites the quoted value of the first VERSION_STR macro in
// text. Nothing else in text changes, including the macro's own whitespace.
func ReplaceVersion(text, version string) (string, error) {
	loc := macroRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, fmt.Errorf("VERSION_STR not found: %w", errkind.ErrMalformed)
	}
	return text[:loc[2]] + version + text[loc[3]:], nil
}

// InjectVersion writes version into the header at path. The file is only
// rewritten when its contents change; changed reports whether that happened.
func InjectVersion(path, version string) (changed bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, errkind.Wrap("missing version header", err)
	}
	if err := validate(version); err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, errkind.Wrap("reading version header", err)
	}

	text := string(data)
	updated, err := ReplaceVersion(text, version)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if updated == text {
		return false, nil
	}

	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, errkind.Wrap("writing version header", err)
	}
	return true, nil
}
