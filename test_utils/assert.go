package test_utils

import (
	"os"
	"testing"
	"time"
)

func Assert(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// AssertUntouched fails if path was rewritten since before was taken.
func AssertUntouched(t *testing.T, path string, before os.FileInfo) {
	t.Helper()
	after, err := os.Stat(path)
	Assert(t, err)
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatalf("%s was rewritten (mtime %s -> %s)", path,
			before.ModTime().Format(time.RFC3339Nano), after.ModTime().Format(time.RFC3339Nano))
	}
}

// Backdate pushes the mtime of path into the past, so a rewrite is visible
// even on filesystems with coarse timestamps.
func Backdate(t *testing.T, path string) os.FileInfo {
	t.Helper()
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	Assert(t, os.Chtimes(path, old, old))
	info, err := os.Stat(path)
	Assert(t, err)
	return info
}
