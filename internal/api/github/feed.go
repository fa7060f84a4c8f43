package github

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/logger"
	"github.com/oshokin/protonup/internal/service/common"
)

const (
	// acceptJSON is the media type recommended by the GitHub REST API.
	acceptJSON = "application/vnd.github+json"

	// archiveSuffix identifies the package archive asset.
	archiveSuffix = ".tar.gz"

	// checksumSuffix identifies the checksum asset.
	checksumSuffix = "sha512sum"
)

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// releaseDocument mirrors the subset of the GitHub release object we read.
type releaseDocument struct {
	TagName     string  `json:"tag_name"`
	PublishedAt string  `json:"published_at"`
	Assets      []Asset `json:"assets"`
}

// Feed resolves releases from a GitHub-compatible releases endpoint.
type Feed struct {
	// baseURL is the releases collection, e.g. .../repos/<owner>/<repo>/releases.
	baseURL string
	// client performs the HTTP calls.
	client *common.Client
}

// NewFeed creates a feed for the releases collection at baseURL.
func NewFeed(baseURL string, client *common.Client) *Feed {
	if client == nil {
		client = common.NewClient()
	}

	return &Feed{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// ReleaseURL builds the endpoint for the selector.
func (f *Feed) ReleaseURL(selector proton.Selector) string {
	if selector.IsLatest() {
		return f.baseURL + "/latest"
	}

	return f.baseURL + "/tags/" + url.PathEscape(selector.TagName())
}

// Resolve fetches release metadata for the selector.
func (f *Feed) Resolve(ctx context.Context, selector proton.Selector) (*proton.Release, error) {
	endpoint := f.ReleaseURL(selector)

	logger.DebugKV(ctx, "Fetching release metadata", "selector", selector.String(), "url", endpoint)

	body, err := f.client.Fetch(ctx, endpoint, acceptJSON)
	if err != nil {
		var statusErr *common.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound && !selector.IsLatest() {
			return nil, fmt.Errorf("%w: release %s not found", proton.ErrMalformedRelease, selector)
		}

		return nil, fmt.Errorf("%w: %s: %w", proton.ErrFeedUnavailable, selector, err)
	}

	release, err := parseRelease(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", proton.ErrMalformedRelease, selector, err)
	}

	logger.DebugKV(ctx, "Resolved release", "selector", selector.String(), "tag", release.Tag)

	return release, nil
}

// Checksum downloads a sha512sum asset and returns the raw digest.
func (f *Feed) Checksum(ctx context.Context, checksumURL string) ([]byte, error) {
	body, err := f.client.Fetch(ctx, checksumURL, "")
	if err != nil {
		return nil, fmt.Errorf("%w: checksum: %w", proton.ErrFeedUnavailable, err)
	}

	digest, err := ParseChecksum(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", proton.ErrMalformedRelease, err)
	}

	return digest, nil
}

var (
	errMissingTag     = errors.New("tag_name is missing")
	errMissingArchive = errors.New("no " + archiveSuffix + " asset")
	errBadChecksum    = errors.New("checksum file is not in sha512sum format")
)

// parseRelease decodes and validates a release document.
func parseRelease(body []byte) (*proton.Release, error) {
	var doc releaseDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	if strings.TrimSpace(doc.TagName) == "" {
		return nil, errMissingTag
	}

	if err := proton.ValidateTag(doc.TagName); err != nil {
		return nil, err
	}

	published, err := time.Parse(time.RFC3339, doc.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("published_at: %w", err)
	}

	release := &proton.Release{
		Tag:           doc.TagName,
		PublishedDate: published,
	}

	for _, asset := range doc.Assets {
		switch {
		case strings.HasSuffix(asset.Name, checksumSuffix):
			if release.ChecksumURL == "" {
				release.ChecksumURL = asset.BrowserDownloadURL
			}
		case strings.HasSuffix(asset.Name, archiveSuffix):
			if release.DownloadURL == "" {
				release.DownloadURL = asset.BrowserDownloadURL
				release.AssetName = asset.Name
				release.AssetSize = asset.Size
			}
		}
	}

	if release.DownloadURL == "" {
		return nil, errMissingArchive
	}

	return release, nil
}

// ParseChecksum extracts a SHA-512 digest from "<hex>  <filename>" text.
func ParseChecksum(text string) ([]byte, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, errBadChecksum
	}

	digest, err := hex.DecodeString(fields[0])
	if err != nil || len(digest) != 64 {
		return nil, errBadChecksum
	}

	return digest, nil
}
