// Package defaults holds the defaults shared by the build tools. Paths are
// relative to the project root, which the commands resolve once at startup
// and pass down explicitly.
package defaults

const (
	// FallbackVersion is used when VERSION is missing or blank.
	FallbackVersion = "v0.0.0-dev"
	VersionFile     = "VERSION"
	VersionHeader   = "include/version.h"
)

const (
	IconSource = "web/cat-icon.png"
	IconMaxDim = 512
	IconColors = 256

	// CatImgMarker identifies the <img> tag whose src gets the data URI.
	CatImgMarker  = `class="cat-img"`
	DataURIPrefix = "data:image/png;base64,"
)

// IconHTML is a function so callers can't mutate a shared default slice.
func IconHTML() []string {
	return []string{"web/index.html"}
}
