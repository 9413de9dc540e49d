package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/coasterranker/coastermap/cmd/coastermap/cmd/export"
	"github.com/coasterranker/coastermap/cmd/coastermap/cmd/merge"
	"github.com/coasterranker/coastermap/cmd/coastermap/cmd/report"
	"github.com/coasterranker/coastermap/cmd/coastermap/cmd/update"
	"github.com/coasterranker/coastermap/cmd/coastermap/cmd/validate"
	"github.com/coasterranker/coastermap/cmd/coastermap/cmd/version"
)

// Execute runs the coastermap CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "coastermap",
		Short:   "Roller coaster catalog maintenance",
		Version: a.version,
		Long: `Coastermap keeps a curated roller coaster catalog in step with records
fetched from the Roller Coaster DataBase.

It merges fetched records into the local store without losing curated
values, keeps multi-track attractions split into their tracks, assigns
local ids to new attractions, and maintains the table mapping external
ids to local ones.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.coastermap.yaml)")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	flags.StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml")
	flags.StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringVar(&a.config.StorePath, "store", a.config.StorePath, "record store file")
	flags.StringVar(&a.config.XrefPath, "xref", a.config.XrefPath, "cross-reference file")
	flags.StringVar(&a.config.BackupDir, "backup-dir", a.config.BackupDir, "backup directory (default is backups next to the store)")

	rootCmd.SetVersionTemplate("coastermap {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		if err := a.reloadConfig(cmd); err != nil {
			return err
		}
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
	)

	a.setLogger(NewLogger(a.config))
	return nil
}

// reloadConfig reads the file named by --config, then reapplies the path
// flags given on the command line.
func (a *App) reloadConfig(cmd *cobra.Command) error {
	config, err := LoadConfig(mustGetString(cmd, "config"))
	if err != nil {
		return err
	}
	for flag, field := range map[string]*string{
		"store":      &config.StorePath,
		"xref":       &config.XrefPath,
		"backup-dir": &config.BackupDir,
	} {
		if cmd.Flags().Changed(flag) {
			*field = mustGetString(cmd, flag)
		}
	}
	*a.config = *config
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(merge.NewCommand(a))
	rootCmd.AddCommand(update.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(validate.NewCommand(a))
	rootCmd.AddCommand(report.NewCommand(a))
	rootCmd.AddCommand(export.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
