package installer

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/protonup/internal/api/github"
	"github.com/oshokin/protonup/internal/archive"
	"github.com/oshokin/protonup/internal/archive/archivetest"
	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/repository/packages"
	"github.com/oshokin/protonup/internal/service/common"
	"github.com/oshokin/protonup/internal/service/download"
)

// fakeRelease is one release served by fakeFeed.
type fakeRelease struct {
	tag     string
	archive []byte
	// checksum is the sha512sum file body; empty means no checksum asset.
	checksum string
	// brokenDownload makes the archive endpoint answer 500.
	brokenDownload bool
}

// fakeFeed is a GitHub-like release endpoint with downloadable assets.
type fakeFeed struct {
	server *httptest.Server

	mu        sync.Mutex
	latest    string
	releases  map[string]*fakeRelease
	downloads int
	failAll   bool
}

// newFakeFeed starts a feed whose latest release is latest.
func newFakeFeed(t *testing.T, latest string, releases ...*fakeRelease) *fakeFeed {
	t.Helper()

	f := &fakeFeed{
		latest:   latest,
		releases: make(map[string]*fakeRelease, len(releases)),
	}

	for _, release := range releases {
		f.releases[release.tag] = release
	}

	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)

	return f
}

// URL is the releases collection URL.
func (f *fakeFeed) URL() string {
	return f.server.URL + "/releases"
}

// Downloads returns how many archive requests were served.
func (f *fakeFeed) Downloads() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.downloads
}

func (f *fakeFeed) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	switch {
	case r.URL.Path == "/releases/latest":
		f.writeRelease(w, r, f.latest)
	case strings.HasPrefix(r.URL.Path, "/releases/tags/"):
		f.writeRelease(w, r, strings.TrimPrefix(r.URL.Path, "/releases/tags/"))
	case strings.HasPrefix(r.URL.Path, "/assets/") && strings.HasSuffix(r.URL.Path, ".tar.gz"):
		release, ok := f.releases[strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/assets/"), ".tar.gz")]
		if !ok {
			http.NotFound(w, r)
			return
		}

		f.downloads++

		if release.brokenDownload {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		_, _ = w.Write(release.archive)
	case strings.HasPrefix(r.URL.Path, "/assets/") && strings.HasSuffix(r.URL.Path, ".sha512sum"):
		release, ok := f.releases[strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/assets/"), ".sha512sum")]
		if !ok || release.checksum == "" {
			http.NotFound(w, r)
			return
		}

		_, _ = w.Write([]byte(release.checksum))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeFeed) writeRelease(w http.ResponseWriter, r *http.Request, tag string) {
	release, ok := f.releases[tag]
	if !ok {
		http.NotFound(w, r)
		return
	}

	assets := []map[string]any{{
		"name":                 release.tag + ".tar.gz",
		"browser_download_url": f.server.URL + "/assets/" + release.tag + ".tar.gz",
		"size":                 len(release.archive),
	}}

	if release.checksum != "" {
		assets = append(assets, map[string]any{
			"name":                 release.tag + ".sha512sum",
			"browser_download_url": f.server.URL + "/assets/" + release.tag + ".sha512sum",
			"size":                 len(release.checksum),
		})
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"tag_name":     release.tag,
		"published_at": "2023-12-18T22:10:01Z",
		"assets":       assets,
	})
}

// packageRelease builds a well-formed release for tag with a matching checksum.
func packageRelease(t *testing.T, tag string) *fakeRelease {
	t.Helper()

	data, err := archivetest.TarGz(archivetest.Package(proton.PackageDirName(tag)))
	require.NoError(t, err)

	sum := sha512.Sum512(data)

	return &fakeRelease{
		tag:      tag,
		archive:  data,
		checksum: fmt.Sprintf("%s  %s.tar.gz\n", hex.EncodeToString(sum[:]), tag),
	}
}

// wrongChecksum is a well-formed checksum file that matches no test archive.
func wrongChecksum(tag string) string {
	sum := sha512.Sum512([]byte("not the archive"))

	return fmt.Sprintf("%s  %s.tar.gz\n", hex.EncodeToString(sum[:]), tag)
}

// recordingOutput keeps everything the service reports.
type recordingOutput struct {
	mu       sync.Mutex
	lines    []string
	progress []int64
	listed   [][]proton.Package
}

func (o *recordingOutput) record(prefix, format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lines = append(o.lines, prefix+fmt.Sprintf(format, args...))
}

func (o *recordingOutput) Infof(format string, args ...any)    { o.record("info: ", format, args...) }
func (o *recordingOutput) Successf(format string, args ...any) { o.record("ok: ", format, args...) }
func (o *recordingOutput) Warnf(format string, args ...any)    { o.record("warn: ", format, args...) }

func (o *recordingOutput) StartProgress(_ string, _ int64) (func(int64, int64), func()) {
	return func(downloaded, _ int64) {
		o.mu.Lock()
		defer o.mu.Unlock()

		o.progress = append(o.progress, downloaded)
	}, func() {}
}

func (o *recordingOutput) Packages(_ string, installed []proton.Package) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.listed = append(o.listed, installed)

	return nil
}

// Text joins every recorded line.
func (o *recordingOutput) Text() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return strings.Join(o.lines, "\n")
}

// scriptedConfirmer answers every question with answer.
type scriptedConfirmer struct {
	mu        sync.Mutex
	answer    bool
	err       error
	questions []string
}

func (c *scriptedConfirmer) Confirm(_ context.Context, question string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.questions = append(c.questions, question)

	return c.answer, c.err
}

// Asked returns the questions seen so far.
func (c *scriptedConfirmer) Asked() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.questions...)
}

// fixture wires a Service to a fake feed and temporary directories.
type fixture struct {
	feed       *fakeFeed
	installDir string
	tempRoot   string
	output     *recordingOutput
	confirmer  *scriptedConfirmer
	service    *Service
}

func newFixture(t *testing.T, feed *fakeFeed) *fixture {
	t.Helper()

	root := t.TempDir()

	fx := &fixture{
		feed:       feed,
		installDir: filepath.Join(root, "compatibilitytools.d"),
		tempRoot:   filepath.Join(root, "tmp"),
		output:     &recordingOutput{},
		confirmer:  &scriptedConfirmer{},
	}

	require.NoError(t, os.Mkdir(fx.tempRoot, 0o755))

	client := common.NewClient()
	fx.service = New(Dependencies{
		Feed:      github.NewFeed(feed.URL(), client),
		Store:     packages.NewDirRepository(fx.installDir),
		Fetcher:   download.New(client, download.WithChunkSize(512)),
		Extractor: archive.NewExtractor(),
		Confirmer: fx.confirmer,
		Output:    fx.output,
	}, WithTempRoot(fx.tempRoot))

	return fx
}

// packageDir is the directory a tag installs to.
func (fx *fixture) packageDir(tag string) string {
	return filepath.Join(fx.installDir, proton.PackageDirName(tag))
}

// breakPackage leaves a marker-less directory behind for tag.
func (fx *fixture) breakPackage(t *testing.T, tag string) string {
	t.Helper()

	leftover := filepath.Join(fx.packageDir(tag), "leftover")
	require.NoError(t, os.MkdirAll(filepath.Join(fx.packageDir(tag), "files", "bin"), 0o755))
	require.NoError(t, os.WriteFile(leftover, []byte("half"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(fx.packageDir(tag), "files", "bin", "wine"), []byte("ELF"), 0o755))
	require.NoError(t, os.Symlink("bin/wine", filepath.Join(fx.packageDir(tag), "files", "wine64")))

	return leftover
}

// snapshot records every entry under the install directory with its mode,
// size, link target and content digest.
func (fx *fixture) snapshot(t *testing.T) map[string]string {
	t.Helper()

	tree := make(map[string]string)

	err := filepath.WalkDir(fx.installDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(fx.installDir, path)
		if err != nil {
			return err
		}

		state := fmt.Sprintf("%v %d", info.Mode(), info.Size())

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, linkErr := os.Readlink(path)
			if linkErr != nil {
				return linkErr
			}

			state += " -> " + target
		case info.Mode().IsRegular():
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				return readErr
			}

			sum := sha512.Sum512(data)
			state += " " + hex.EncodeToString(sum[:])
		}

		tree[rel] = state

		return nil
	})
	require.NoError(t, err)

	return tree
}

// requireTempClean asserts no temporary download survived.
func (fx *fixture) requireTempClean(t *testing.T) {
	t.Helper()

	entries, err := os.ReadDir(fx.tempRoot)
	require.NoError(t, err)
	require.Empty(t, entries)
}
