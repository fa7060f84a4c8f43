// Package runlock keeps two protonup processes from changing the same
// install directory at once.
//
// The lock is a marker file holding the owner's PID. A marker whose PID no
// longer belongs to a running protonup process is considered stale and is
// reclaimed.
package runlock
