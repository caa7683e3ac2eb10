package version

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoviRobi/meowbuild/defaults"
	"github.com/KoviRobi/meowbuild/errkind"
	. "github.com/KoviRobi/meowbuild/test_utils"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"v1.2.3":           "v1.2.3",
		"  v1.2.3\n":       "v1.2.3",
		"// v1.2.3":        "v1.2.3",
		"///\tv2.0.0-rc1 ": "v2.0.0-rc1",
		"/v3":              "v3",
		"v1.0.0\nsecond":   "v1.0.0",
		"v1.0.0\r\nsecond": "v1.0.0",
		"   ":              "",
		"//   ":            "",
		"v1/2":             "v1/2",
		"//\nv1.2.3":       "v1.2.3",
		"// \nv1.2.3\n":    "v1.2.3",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestReadVersion(t *testing.T) {
	dir := t.TempDir()

	v, err := ReadVersion(WriteFile(t, dir, "VERSION", "// v1.4.2\n"))
	require.NoError(t, err)
	assert.Equal(t, "v1.4.2", v)

	v, err = ReadVersion(WriteFile(t, dir, "EMPTY", " \n\t"))
	require.NoError(t, err)
	assert.Equal(t, defaults.FallbackVersion, v)

	v, err = ReadVersion(filepath.Join(dir, "MISSING"))
	require.NoError(t, err)
	assert.Equal(t, defaults.FallbackVersion, v)
}

func TestReadVersionRejectsQuotes(t *testing.T) {
	path := WriteFile(t, t.TempDir(), "VERSION", `v1"evil`)
	_, err := ReadVersion(path)
	assert.ErrorIs(t, err, errkind.ErrMalformed)
}

func TestReplaceVersionKeepsWhitespace(t *testing.T) {
	in := "#define  VERSION_STR\t\"old\"\n#define VERSION_STR \"second\"\n"
	out, err := ReplaceVersion(in, NewVersion)
	require.NoError(t, err)
	assert.Equal(t, "#define  VERSION_STR\t\"v1.2.3\"\n#define VERSION_STR \"second\"\n", out)
}

func TestInjectVersion(t *testing.T) {
	path := WriteFile(t, t.TempDir(), "include/version.h", Header(OldVersion))

	changed, err := InjectVersion(path, NewVersion)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header(NewVersion), string(data))

	before := Backdate(t, path)
	changed, err = InjectVersion(path, NewVersion)
	require.NoError(t, err)
	assert.False(t, changed)
	AssertUntouched(t, path, before)
}

func TestInjectVersionMissingMacro(t *testing.T) {
	content := "#pragma once\n#define OTHER_STR \"x\"\n"
	path := WriteFile(t, t.TempDir(), "version.h", content)
	before := Backdate(t, path)

	_, err := InjectVersion(path, NewVersion)
	assert.ErrorIs(t, err, errkind.ErrMalformed)
	assert.NotErrorIs(t, err, errkind.ErrNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	AssertUntouched(t, path, before)
}

func TestInjectVersionMissingHeader(t *testing.T) {
	_, err := InjectVersion(filepath.Join(t.TempDir(), "version.h"), NewVersion)
	assert.ErrorIs(t, err, errkind.ErrNotFound)
	assert.NotErrorIs(t, err, errkind.ErrMalformed)
}

func TestInjectVersionMissingHeaderBeatsBadVersion(t *testing.T) {
	_, err := InjectVersion(filepath.Join(t.TempDir(), "version.h"), `v1"evil`)
	assert.ErrorIs(t, err, errkind.ErrNotFound)
}

func TestDefaultPaths(t *testing.T) {
	p := DefaultPaths("proj")
	assert.Equal(t, filepath.Join("proj", "VERSION"), p.VersionFile)
	assert.Equal(t, filepath.Join("proj", "include", "version.h"), p.Header)
}
