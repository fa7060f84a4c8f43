// Package archive unpacks Proton-GE release archives into the install directory.
//
// Archives are gzip-compressed tarballs whose single top-level directory is
// the package itself. The Extractor refuses entries outside that directory,
// preserves file modes and writes the marker file last, so a package
// directory only looks installed once every other entry is on disk.
package archive
