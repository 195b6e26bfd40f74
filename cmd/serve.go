package cmd

import (
	"context"
	"fmt"

	"dbconsole/internal/app"

	"github.com/spf13/cobra"
)

// serveOptions holds the launch flags. The same variables back the flags on
// both the root and the serve command.
var serveOptions struct {
	noTUI       bool
	debug       bool
	noBrowser   bool
	configPath  string
	host        string
	allowOthers bool
	allowRemote bool
	adminPort   int
	tcpPort     int
	pgPort      int
	baseDir     string
}

// serveCmd defines the serve command structure.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console servers with an interactive TUI or CLI mode.",
	Long: `Starts the three console servers in order: the web admin endpoint,
the TCP server and the PostgreSQL wire protocol server.

It can run in two modes:

1. Interactive TUI Mode (default):
   - Shows the admin URL, service status and an activity log.
   - Keys open the console in a browser, copy the URL or quit.

2. Non-TUI / CLI Mode (using --no-tui flag):
   - Prints service status to the console and keeps running
     until interrupted (e.g., Ctrl+C).

A server that fails to start does not stop the others. If the admin
endpoint is not running once every start was attempted, dbconsole
shuts everything down and exits with status 1.

Configuration:
  dbconsole loads ~/.config/dbconsole/config.yaml and then
  .dbconsole/config.yaml in the current directory. Flags override both.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveOptions.noTUI, serveOptions.debug, rootCmd.Version)
	cfg.NoBrowser = serveOptions.noBrowser
	cfg.ConfigPath = serveOptions.configPath
	cfg.Overrides = serveOverrides(cmd)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

// serveOverrides picks up only the flags the user set, so config file
// values survive unset flags.
func serveOverrides(cmd *cobra.Command) app.Overrides {
	var o app.Overrides
	flags := cmd.Flags()
	if flags.Changed("host") {
		o.Host = &serveOptions.host
	}
	if flags.Changed("allow-others") {
		o.AllowOthers = &serveOptions.allowOthers
	}
	if flags.Changed("allow-remote-control") {
		o.AllowRemoteControl = &serveOptions.allowRemote
	}
	if flags.Changed("admin-port") {
		o.AdminPort = &serveOptions.adminPort
	}
	if flags.Changed("tcp-port") {
		o.TCPPort = &serveOptions.tcpPort
	}
	if flags.Changed("pg-port") {
		o.PGPort = &serveOptions.pgPort
	}
	if flags.Changed("base-dir") {
		o.BaseDir = &serveOptions.baseDir
	}
	return o
}

func addServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVar(&serveOptions.noTUI, "no-tui", false, "Disable TUI and run services in the foreground")
	flags.BoolVar(&serveOptions.debug, "debug", false, "Enable general debug logging")
	flags.BoolVar(&serveOptions.noBrowser, "no-browser", false, "Do not open the web console after launch")
	flags.StringVar(&serveOptions.configPath, "config", "", "Additional config file applied on top of the user and project config")
	flags.StringVar(&serveOptions.host, "host", "", "Host the servers bind to")
	flags.BoolVar(&serveOptions.allowOthers, "allow-others", false, "Listen on all interfaces so other machines can connect")
	flags.BoolVar(&serveOptions.allowRemote, "allow-remote-control", false, "Accept shutdown requests and MCP calls from other machines")
	flags.IntVar(&serveOptions.adminPort, "admin-port", 0, "Web admin endpoint port (0 picks a free port)")
	flags.IntVar(&serveOptions.tcpPort, "tcp-port", 0, "TCP server port (0 picks a free port)")
	flags.IntVar(&serveOptions.pgPort, "pg-port", 0, "PostgreSQL wire protocol server port (0 picks a free port)")
	flags.StringVar(&serveOptions.baseDir, "base-dir", "", "Base directory reported to clients")
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}
