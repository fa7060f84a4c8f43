// Package download streams release assets to local files.
//
// The Downloader reads the response in fixed-size chunks, hands every chunk
// to the operating system before reading the next one and reports progress
// through a callback. It never deletes what it wrote; cleanup belongs to
// the caller.
package download
