// Package github resolves Proton-GE releases from the GitHub releases API.
//
// A Feed turns a Selector into a Release by requesting either the latest
// release or a release by tag, picking the .tar.gz archive asset and the
// optional sha512sum asset. Nothing is cached; every call hits the network.
package github
