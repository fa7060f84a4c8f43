package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/logger"
	"github.com/oshokin/protonup/internal/service/common"
)

const (
	// DefaultChunkSize is the read size per iteration.
	DefaultChunkSize = 64 << 10

	// DefaultFileMode is used for downloaded files.
	DefaultFileMode os.FileMode = 0o644

	// acceptBinary asks servers for the raw asset.
	acceptBinary = "application/octet-stream"
)

// ProgressFunc receives the bytes written so far and the expected total.
// total is negative when the server did not announce a content length.
type ProgressFunc func(downloaded, total int64)

// Downloader fetches remote files in chunks.
type Downloader struct {
	// client performs the HTTP request.
	client *common.Client
	// chunkSize is the number of bytes read per iteration.
	chunkSize int
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithChunkSize overrides the chunk size.
func WithChunkSize(size int) Option {
	return func(d *Downloader) {
		if size > 0 {
			d.chunkSize = size
		}
	}
}

// New creates a downloader using the provided HTTP client.
func New(client *common.Client, opts ...Option) *Downloader {
	if client == nil {
		client = common.NewClient()
	}

	d := &Downloader{
		client:    client,
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Fetch streams url into destination and returns the number of bytes written.
// On failure the partially written file is left in place.
func (d *Downloader) Fetch(ctx context.Context, url, destination string, progress ProgressFunc) (int64, error) {
	if progress == nil {
		progress = func(int64, int64) {}
	}

	response, err := d.client.Open(ctx, url, acceptBinary)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", proton.ErrTransport, url, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	total := response.ContentLength

	logger.DebugKV(ctx, "Downloading", "url", url, "destination", destination, "size", total)

	file, err := os.OpenFile(filepath.Clean(destination), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, DefaultFileMode)
	if err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", proton.ErrTransport, destination, err)
	}

	written, copyErr := d.copyChunks(file, response.Body, total, progress)

	if copyErr == nil {
		copyErr = file.Sync()
	}

	if closeErr := file.Close(); copyErr == nil {
		copyErr = closeErr
	}

	if copyErr != nil {
		return written, fmt.Errorf("%w: %s: %w", proton.ErrTransport, url, copyErr)
	}

	if total >= 0 && written != total {
		return written, fmt.Errorf("%w: %s: got %d of %d bytes", proton.ErrTransport, url, written, total)
	}

	return written, nil
}

// copyChunks moves the body into file one chunk at a time.
// os.File is unbuffered, so each chunk reaches the OS before the next read.
// Only a clean io.EOF ends the loop; a truncated body surfaces as an error.
func (d *Downloader) copyChunks(file *os.File, body io.Reader, total int64, progress ProgressFunc) (int64, error) {
	var (
		buffer  = make([]byte, d.chunkSize)
		written int64
	)

	for {
		n, readErr := readChunk(body, buffer)
		if n > 0 {
			if _, err := file.Write(buffer[:n]); err != nil {
				return written, err
			}

			written += int64(n)
			progress(written, total)
		}

		switch {
		case readErr == nil:
			continue
		case readErr == io.EOF: //nolint:errorlint // io.EOF is returned unwrapped by contract.
			return written, nil
		default:
			return written, readErr
		}
	}
}

// readChunk fills buffer unless the body ends or fails first.
func readChunk(body io.Reader, buffer []byte) (int, error) {
	filled := 0

	for filled < len(buffer) {
		n, err := body.Read(buffer[filled:])
		filled += n

		if err != nil {
			return filled, err
		}
	}

	return filled, nil
}
