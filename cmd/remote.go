package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"dbconsole/internal/cli"
	"dbconsole/internal/client"
	"dbconsole/internal/config"

	"github.com/spf13/cobra"
)

const remoteTimeout = 10 * time.Second

var (
	remoteURL          string
	statusOutputFormat string
)

// statusCmd queries a running dbconsole through its admin endpoint.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running dbconsole",
	Long: `Connects to the admin endpoint of a running dbconsole and prints
the state of each server.

Note: dbconsole must be running (use 'dbconsole serve') before using this command.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// stopCmd asks a running dbconsole to shut down.
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running dbconsole",
	Long: `Asks the admin endpoint of a running dbconsole to stop all servers
and exit.`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)

	for _, c := range []*cobra.Command{statusCmd, stopCmd} {
		c.Flags().StringVar(&remoteURL, "url", "", "Admin endpoint URL (default: derived from the config files)")
	}
	statusCmd.Flags().StringVarP(&statusOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	printer, err := cli.NewPrinter(cmd.OutOrStdout(), cli.OutputFormat(statusOutputFormat))
	if err != nil {
		return err
	}
	c, err := newRemoteClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), remoteTimeout)
	defer cancel()

	statuses, err := c.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to query dbconsole status: %w", err)
	}
	return printer.PrintStatus(statuses)
}

func runStop(cmd *cobra.Command, args []string) error {
	c, err := newRemoteClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), remoteTimeout)
	defer cancel()

	msg, err := c.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("failed to stop dbconsole: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func newRemoteClient() (*client.Client, error) {
	url := remoteURL
	if url == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		if url, err = adminURL(cfg); err != nil {
			return nil, err
		}
	}
	return client.New(url, rootCmd.Version), nil
}

// adminURL is where a dbconsole started with cfg serves its admin endpoint.
func adminURL(cfg config.ConsoleConfig) (string, error) {
	if cfg.Admin.Port == 0 {
		return "", errors.New("admin port is chosen at startup, pass --url")
	}
	args := cfg.Args(rootCmd.Version)
	// Same machine: stay on the local host so the admin endpoint sees a
	// loopback peer.
	args.AllowOthers = false
	return "http://" + net.JoinHostPort(args.DisplayHost(), strconv.Itoa(cfg.Admin.Port)), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
