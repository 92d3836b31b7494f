package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/cellentry/pkg/cell"
	"github.com/charlie0129/cellentry/pkg/config"
	"github.com/charlie0129/cellentry/pkg/session"
	"github.com/charlie0129/cellentry/pkg/table"
)

func NewCellsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "cells",
		Aliases: []string{"status"},
		Short:   "Show the cells of the session as a table",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := apiClient().GetSession(sessionID)
			if err != nil {
				return err
			}
			printCells(cmd.OutOrStdout(), info.Cells)
			return nil
		},
	}
}

func NewSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "summary",
		Short:   "Summarize the cells of the session",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum, err := apiClient().GetSummary(sessionID)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}

func NewExportCommand() *cobra.Command {
	output := table.ExportFilename

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export the cells of the session as CSV",
		GroupID: gBasic,
		Long: `Export the cells of the session as CSV.

The first column is the cell key, followed by voltage, current, temp,
capacity, min_voltage and max_voltage. Use "-o -" to write to stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := apiClient().Export(sessionID)
			if err != nil {
				return err
			}
			return writeExport(cmd.OutOrStdout(), output, b)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", output, "output file, - for stdout")

	return cmd
}

func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   "Show the daemon configuration",
		GroupID: gAdvanced,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := apiClient().GetConfig()
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), config.NewFileFromConfig(raw, ""))
			return nil
		},
	}
}

func writeExport(stdout io.Writer, output string, b []byte) error {
	if output == "-" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.WriteFile(output, b, 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write %s", output)
	}
	logrus.Infof("exported cells to %s", output)
	return nil
}

func printCells(w io.Writer, cells []*cell.Spec) {
	if len(cells) == 0 {
		fmt.Fprintln(w, "No cells registered. Use 'cellentry register' first.")
		return
	}
	fmt.Fprintln(w, bold("Cell data:"))
	fmt.Fprintln(w, table.Render(cells))
}

func printSummary(w io.Writer, sum *session.Summary) {
	fmt.Fprintln(w, bold("Summary:"))
	if sum.Cells == 0 {
		fmt.Fprintln(w, "  No cells registered.")
		return
	}
	fmt.Fprintf(w, "  Cells: %s (%d lfp, %d other)\n", bold("%d", sum.Cells), sum.LFPCells, sum.Cells-sum.LFPCells)
	fmt.Fprintf(w, "  Total current: %s\n", bold("%.2f A", sum.TotalCurrent))
	fmt.Fprintf(w, "  Average current: %s\n", bold("%.2f A", sum.AverageCurrent))
	fmt.Fprintf(w, "  Total capacity: %s\n", color.New(color.Bold, color.FgGreen).Sprintf("%.2f", sum.TotalCapacity))
	fmt.Fprintf(w, "  Temperature: %s\n", bold("%.1f-%.1f °C", sum.MinTemperature, sum.MaxTemperature))
}

func printConfig(w io.Writer, conf config.Config) {
	fmt.Fprintln(w, bold("Daemon configuration:"))
	fmt.Fprintf(w, "  Default number of cells: %s\n", bold("%d", conf.DefaultCellCount()))
	fmt.Fprintf(w, "  Keep currents when re-registering unchanged slots: %s\n", bool2Text(conf.CarryOverCurrents()))
	fmt.Fprintf(w, "  Temperature range: %s\n", bold("%.1f-%.1f °C", conf.MinTemperature(), conf.MaxTemperature()))
	fmt.Fprintf(w, "  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))
	if m := conf.SessionIdleTimeoutMinutes(); m > 0 {
		fmt.Fprintf(w, "  Idle sessions are removed after: %s\n", bold("%d minutes", m))
	} else {
		fmt.Fprintf(w, "  Idle sessions are removed after: %s\n", bold("never"))
	}
}
