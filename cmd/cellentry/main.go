package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/cellentry/pkg/cell"
	"github.com/charlie0129/cellentry/pkg/client"
)

var (
	logLevel       = "info"
	unixSocketPath = "/tmp/cellentry.sock"
	configPath     = "/etc/cellentry.json"
	sessionID      = "default"
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	switch {
	case errors.Is(err, client.ErrDaemonNotRunning):
		fmt.Fprintln(os.Stderr, "\nError: cellentry daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'cellentry daemon', or use 'cellentry entry' for a local session.")
	case errors.Is(err, client.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or restart the daemon with the '--always-allow-non-root-access' flag")
	case errors.Is(err, cell.ErrInvalidCount):
		fmt.Fprintf(os.Stderr, "\nError: the number of cells must be between %d and %d\n", cell.MinCount, cell.MaxCount)
	case errors.Is(err, cell.ErrInvalidCurrent):
		fmt.Fprintln(os.Stderr, "\nError: current must be a number >= 0")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cellentry",
		Short: "cellentry records battery cell chemistries and currents",
		Long: `cellentry records battery cell chemistries and currents.

Register cells by chemistry (lfp, nmc, ...), enter a measured current for
each one, then view the derived voltages, temperature and capacity as a
table or export them as cell_data.csv.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path (.json, .yaml or .yml)")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "cellentry daemon unix socket path")
	globalFlags.StringVarP(&sessionID, "session", "s", sessionID, "daemon session to work on")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewEntryCommand(),
		NewRegisterCommand(),
		NewSetCurrentCommand(),
		NewCellsCommand(),
		NewSummaryCommand(),
		NewExportCommand(),
		NewResetCommand(),
		NewSessionsCommand(),
		NewConfigCommand(),
		NewCarryOverCommand(),
		NewDefaultCountCommand(),
	)

	return cmd
}

// apiClient returns a client for the configured daemon socket. Flags are
// parsed by the time commands run, so it is created lazily.
func apiClient() *client.Client {
	return client.NewClient(unixSocketPath)
}
