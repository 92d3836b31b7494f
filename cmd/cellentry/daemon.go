package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/cellentry/pkg/daemon"
	"github.com/charlie0129/cellentry/pkg/version"
)

var (
	// alwaysAllowNonRootAccess indicates whether to always allow non-root users to access the daemon.
	alwaysAllowNonRootAccess = false
	httpAddr                 = ""
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Short:   "Run cellentry daemon in the foreground",
		GroupID: gAdvanced,
		Long: `Run cellentry daemon in the foreground.

The daemon keeps sessions in memory and serves them over a unix socket (and
optionally over TCP with --http-addr). Sessions are lost when it exits.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("cellentry daemon starting")
			return daemon.Run(daemon.Options{
				ConfigPath:     configPath,
				UnixSocketPath: unixSocketPath,
				HTTPAddr:       httpAddr,
				AllowNonRoot:   alwaysAllowNonRootAccess,
			})
		},
	}

	f := cmd.Flags()

	f.BoolVar(&alwaysAllowNonRootAccess, "always-allow-non-root-access", false,
		"Always allow non-root users to access the daemon.")
	f.StringVar(&httpAddr, "http-addr", "",
		"Also serve the API over TCP on this address, e.g. 127.0.0.1:8080.")

	return cmd
}
