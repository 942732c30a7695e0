package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpmgen",
		Short: "Build RPM packages from Cargo project metadata",
		Long: `Rpmgen reads [package.metadata.generate-rpm] from Cargo.toml, applies
override layers, resolves the declared assets against the build output and
writes a binary RPM package.

Shared library requirements of packaged executables are discovered
automatically, either by inspecting ELF files directly or by delegating
to rpm's find-requires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewInspectCmd())

	return rootCmd
}
