// Package console is the user-facing side of protonup: status lines,
// download progress, the installed package table and yes/no prompts.
//
// It renders with pterm. Quiet mode drops status and progress output but
// never the answers the user asked for (listings, warnings, errors).
package console
