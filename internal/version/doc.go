// Package version exposes protonup build metadata.
//
// Version, Commit and BuildTime are injected with -ldflags "-X ..." and fall
// back to local-build defaults.
package version
