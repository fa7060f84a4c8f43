// Package archivetest builds small release archives for tests.
package archivetest

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
)

// Entry is a member of a generated archive.
type Entry struct {
	// Name is the slash-separated path inside the archive.
	Name string
	// Body is the file content; ignored for directories and links.
	Body []byte
	// Mode is the permission bits; defaults to 0644 for files and 0755 for directories.
	Mode int64
	// Type is the tar type flag; defaults to a regular file.
	Type byte
	// Link is the symlink or hard link target.
	Link string
}

// Package returns the entries of a minimal, well-formed package directory.
func Package(dir string) []Entry {
	return []Entry{
		{Name: dir + "/", Type: tar.TypeDir},
		{Name: dir + "/proton", Body: []byte("#!/usr/bin/env python3\n"), Mode: 0o755},
		{Name: dir + "/version", Body: []byte("1700000000 " + dir + "\n")},
		{Name: dir + "/files/", Type: tar.TypeDir},
		{Name: dir + "/files/bin/wine", Body: []byte("ELF"), Mode: 0o755},
	}
}

// TarGz encodes entries as a gzip-compressed tarball.
func TarGz(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer

	compressor := gzip.NewWriter(&buf)
	writer := tar.NewWriter(compressor)

	for _, entry := range entries {
		header := &tar.Header{
			Name:     entry.Name,
			Mode:     entry.Mode,
			Typeflag: entry.Type,
			Linkname: entry.Link,
		}

		switch header.Typeflag {
		case 0, tar.TypeReg:
			header.Typeflag = tar.TypeReg
			header.Size = int64(len(entry.Body))

			if header.Mode == 0 {
				header.Mode = 0o644
			}
		case tar.TypeDir:
			if header.Mode == 0 {
				header.Mode = 0o755
			}
		default:
			if header.Mode == 0 {
				header.Mode = 0o777
			}
		}

		if err := writer.WriteHeader(header); err != nil {
			return nil, err
		}

		if header.Typeflag == tar.TypeReg {
			if _, err := writer.Write(entry.Body); err != nil {
				return nil, err
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	if err := compressor.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteTarGz encodes entries into a file under dir and returns its path.
func WriteTarGz(dir, name string, entries []Entry) (string, error) {
	data, err := TarGz(entries)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)

	return path, os.WriteFile(path, data, 0o600)
}
