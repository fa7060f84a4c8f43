// Package packages implements the installation store: the view of the
// install directory as a set of installed compatibility tools.
//
// A subdirectory counts as an installed package only when it contains the
// marker file, so partially extracted directories are never reported.
package packages
