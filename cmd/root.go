package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dbconsole",
	Short: "Run the local database console servers",
	Long: `dbconsole starts the local database console: a web admin endpoint,
a raw TCP server and a PostgreSQL wire protocol server, all sharing one
configuration. Running dbconsole without a subcommand is the same as
'dbconsole serve'.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid arguments, failed connections)
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "dbconsole version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	// The root command launches too, so that a bare 'dbconsole --no-tui'
	// works. RunE is set here because runServe reads rootCmd.
	rootCmd.RunE = runServe
	addServeFlags(rootCmd)
}
