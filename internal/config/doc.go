// Package config defines the per-user protonup settings and provides
// helpers to load, validate and save them in YAML format.
//
// The file lives under the XDG config home and has one canonical key for
// the install directory, install_dir. Saves replace the file atomically.
package config
