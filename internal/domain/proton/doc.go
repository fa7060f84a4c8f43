// Package proton contains core domain types for managing Proton-GE packages.
//
// It defines Selector (which release the user asked for), Release (what the
// feed resolved it to), Package (what is on disk) and the error taxonomy shared
// by the feed client, the installation store and the installer.
package proton
