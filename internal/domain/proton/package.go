package proton

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// MarkerFilename is the sentinel file present in every complete package.
	MarkerFilename = "proton"

	// packagePrefix is prepended to tags that do not name Proton themselves.
	packagePrefix = "Proton-"
)

// Package is an installed compatibility tool.
type Package struct {
	// Identifier is the package directory name inside the install directory.
	Identifier string
	// SizeBytes is the sum of regular file sizes under the package directory.
	SizeBytes int64
}

// PackageDirName maps a release tag to its directory name.
// Older tags such as "6.21-GE-2" extract to "Proton-6.21-GE-2",
// newer ones such as "GE-Proton8-26" extract to a directory of the same name.
func PackageDirName(tag string) string {
	tag = strings.TrimSpace(tag)
	if strings.Contains(tag, "Proton") {
		return tag
	}

	return packagePrefix + tag
}

// ValidateTag checks that tag names exactly one directory inside the install directory.
func ValidateTag(tag string) error {
	name := PackageDirName(tag)
	trimmed := strings.TrimSpace(tag)

	switch {
	case trimmed == "", trimmed == ".", trimmed == "..",
		name == ".", name == "..",
		strings.ContainsAny(name, "/\\\x00"),
		filepath.Base(name) != name:
		return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	default:
		return nil
	}
}
