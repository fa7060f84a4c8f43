// Package common holds helpers shared by several services.
//
// It provides a small HTTP client wrapper used for both the release feed
// (short, bounded calls) and archive downloads (long, streamed responses).
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
