package proton

import (
	"strings"
	"time"
)

// LatestTag is the selector keyword for the newest published release.
const LatestTag = "latest"

// Selector identifies the release a caller asked for.
// The zero value selects the latest release.
type Selector struct {
	tag string
}

// Latest returns a selector for the newest release.
func Latest() Selector {
	return Selector{}
}

// Tag returns a selector for an explicit release tag.
func Tag(tag string) Selector {
	return Selector{tag: strings.TrimSpace(tag)}
}

// ParseSelector converts user input into a Selector.
// An empty string or "latest" (in any case) selects the latest release.
func ParseSelector(s string) Selector {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, LatestTag) {
		return Latest()
	}

	return Tag(s)
}

// IsLatest reports whether the selector asks for the newest release.
func (s Selector) IsLatest() bool {
	return s.tag == ""
}

// TagName returns the explicit tag or an empty string for Latest.
func (s Selector) TagName() string {
	return s.tag
}

// String renders the selector for logs and messages.
func (s Selector) String() string {
	if s.IsLatest() {
		return LatestTag
	}

	return s.tag
}

// Release describes a published release resolved from the feed.
type Release struct {
	// Tag is the unique remote identifier of the release.
	Tag string
	// PublishedDate is the publication time reported by the feed.
	PublishedDate time.Time
	// DownloadURL points to the .tar.gz archive.
	DownloadURL string
	// ChecksumURL points to the sha512sum asset, empty when the feed has none.
	ChecksumURL string
	// AssetName is the file name of the archive asset.
	AssetName string
	// AssetSize is the archive size reported by the feed, zero when unknown.
	AssetSize int64
}

// HasChecksum reports whether the release publishes a checksum asset.
func (r *Release) HasChecksum() bool {
	return r.ChecksumURL != ""
}

// Date returns the publication date formatted as YYYY-MM-DD.
func (r *Release) Date() string {
	if r.PublishedDate.IsZero() {
		return ""
	}

	return r.PublishedDate.Format(time.DateOnly)
}
