package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/service/installer"
	"github.com/oshokin/protonup/internal/version"
)

const (
	// exitFailure is returned for any failed operation.
	exitFailure = 1
	// exitNotInstalled is returned when removing a package that is not installed.
	exitNotInstalled = 2
)

var (
	// options collects flag values for the installer entry point.
	options installer.Options

	// rootCmd installs, lists and removes Proton-GE packages.
	rootCmd = &cobra.Command{
		Use:   "protonup",
		Short: "Install and manage Proton-GE builds for Steam",
		Long: "protonup downloads GloriousEggroll's Proton-GE releases into Steam's compatibilitytools.d directory.\n" +
			"Without flags it installs the latest release.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return installer.Run(ctx, &options)
		},
	}
)

// Execute runs the protonup CLI and exits with a non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(ExitCode(err))
	}
}

// ExitCode maps an error returned by the installer to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, proton.ErrNotInstalled):
		return exitNotInstalled
	default:
		return exitFailure
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&options.Tag, "tag", "t", "", `release tag to install, or "latest"`)
	flags.BoolVarP(&options.List, "list", "l", false, "list installed packages")
	flags.StringVarP(&options.Remove, "remove", "r", "", "remove the package installed for `TAG`")
	flags.StringVarP(&options.InstallDir, "dir", "d", "", "set and remember the installation directory")
	flags.BoolVarP(&options.AutoConfirm, "yes", "y", false, "answer yes to every prompt")
	flags.BoolVarP(&options.Quiet, "quiet", "q", false, "suppress status and progress output")
	flags.BoolVar(&options.DownloadOnly, "download", false, "only download the archive")
	flags.StringVarP(&options.OutputDir, "output", "o", "", "directory for --download (default: current directory)")
	flags.StringVar(&options.ConfigPath, "config", "", "path to the settings file (default: $XDG_CONFIG_HOME/protonup/config.yaml)")
	flags.StringVar(&options.LogLevel, "log-level", "", "diagnostic log level: debug, info, warn or error")
}
