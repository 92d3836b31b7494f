package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/cellentry/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
			if daemonVersion, err := apiClient().GetVersion(); err == nil && daemonVersion != version.Version {
				logrus.WithFields(logrus.Fields{
					"clientVersion": version.Version,
					"daemonVersion": daemonVersion,
				}).Warn("Version mismatch between client and daemon.")
			}
		},
	}
}

// emptySlot lets users leave a slot empty on the command line.
const emptySlot = "-"

func NewRegisterCommand() *cobra.Command {
	count := 0

	cmd := &cobra.Command{
		Use:     "register [chemistry]...",
		Short:   "Register cells by chemistry",
		GroupID: gBasic,
		Long: `Register cells by chemistry, one label per slot.

Labels are trimmed and lowercased. "lfp" cells get 3.2 V nominal (2.8-3.6 V);
every other label gets 3.6 V nominal (3.2-4.0 V). Use "-" or "" to leave a
slot empty; empty slots produce no cell.

Registering again replaces all cells of the session.`,
		Example: `  cellentry register lfp lfp nmc
  cellentry register lfp - nmc --count 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := count
			if n == 0 {
				n = len(args)
			}

			labels := make([]string, len(args))
			for i, a := range args {
				if a != emptySlot {
					labels[i] = a
				}
			}

			cells, err := apiClient().Register(sessionID, labels, n)
			if err != nil {
				return fmt.Errorf("failed to register cells: %w", err)
			}

			logrus.Infof("registered %d cell(s) in session %s", len(cells), sessionID)
			for _, c := range cells {
				cmd.Printf("  %s: %s\n", bold("%s", c.Key), fmt.Sprintf("%.1f V (%.1f-%.1f V), %.1f °C", c.Voltage, c.MinVoltage, c.MaxVoltage, c.Temperature))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of slots (1-20), defaults to the number of labels")

	return cmd
}

func NewSetCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set-current <key> <amps>",
		Short:   "Set the measured current of a cell",
		GroupID: gBasic,
		Long: `Set the measured current of a cell, in amperes.

The capacity of the cell is recomputed as voltage x current, rounded to two
decimal places. Currents must be >= 0.`,
		Example: `  cellentry set-current cell_1_lfp 2.0`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := parseFloat(args[1], "current")
			if err != nil {
				return err
			}

			c, err := apiClient().SetCurrent(sessionID, args[0], current)
			if err != nil {
				return fmt.Errorf("failed to set current: %w", err)
			}

			cmd.Printf("%s: current %s, capacity %s\n", c.Key, bold("%.2f A", c.Current), bold("%.2f", c.Capacity))
			return nil
		},
	}
}

func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		Short:   "Discard all cells of the session",
		GroupID: gBasic,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := apiClient().ResetSession(sessionID); err != nil {
				return err
			}
			logrus.Infof("session %s reset", sessionID)
			return nil
		},
	}
}

func NewSessionsCommand() *cobra.Command {
	list := func(cmd *cobra.Command, _ []string) error {
		ids, err := apiClient().ListSessions()
		if err != nil {
			return err
		}
		for _, id := range ids {
			cmd.Println(id)
		}
		return nil
	}

	cmd := &cobra.Command{
		Use:     "sessions",
		Short:   "List and manage daemon sessions",
		GroupID: gAdvanced,
		Long: `List and manage daemon sessions.

Every session holds its own cells. Commands work on the session named by
--session, which is created on first registration. Without a subcommand,
the IDs of all sessions are listed.`,
		RunE: list,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the IDs of all sessions",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		&cobra.Command{
			Use:   "new",
			Short: "Create a session with a random ID",
			Long: `Create a session with a random ID and print it.

The new session picks up the current daemon configuration. Pass the ID to
other commands with --session.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				info, err := apiClient().CreateSession()
				if err != nil {
					return err
				}
				cmd.Println(info.ID)
				logrus.Infof("created session %s, use it with '--session %s'", info.ID, info.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:     "delete <id>",
			Aliases: []string{"rm"},
			Short:   "Delete a session and all of its cells",
			Args:    cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if err := apiClient().DeleteSession(args[0]); err != nil {
					return err
				}
				logrus.Infof("session %s deleted", args[0])
				return nil
			},
		},
	)

	return cmd
}

func NewCarryOverCommand() *cobra.Command {
	return newEnableDisableCommand(
		"carry-over",
		"Keep entered currents when re-registering unchanged slots",
		`Keep entered currents when re-registering unchanged slots.

When enabled, registering again keeps the current of slot N if slot N has
the same chemistry label as before. Matching is by slot position only.
Temperatures are always sampled again. Applies to the next registration of
every session, including existing ones.`,
		func() (string, error) { return apiClient().SetCarryOverCurrents(true) },
		func() (string, error) { return apiClient().SetCarryOverCurrents(false) },
	)
}

func NewDefaultCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "default-count <n>",
		Short:   "Set the default number of cells offered by forms",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := parseIntArg(args, "count")
			if err != nil {
				return err
			}
			ret, err := apiClient().SetDefaultCellCount(n)
			if err != nil {
				return err
			}
			logrus.Infof("daemon responded: %s", ret)
			return nil
		},
	}
}
