// Package installer drives Proton-GE package installation and removal.
//
// An install walks a fixed sequence of states:
//
//	Resolving -> CheckingExisting -> AlreadyInstalled
//	                              -> Downloading -> Verifying -> Extracting -> Cleanup -> Done
//
// with Cancelled (the user declined) and Failed as terminal exits. The
// archive is downloaded into a private temporary directory and only touches
// the install directory once it has been fully received and verified, so a
// failed download never disturbs existing packages. A package directory
// without its marker file is treated as a broken earlier install and is
// replaced after confirmation.
//
// Run is the entry point used by the CLI. It loads settings, takes the run
// lock and dispatches the requested operations to a Service.
package installer
