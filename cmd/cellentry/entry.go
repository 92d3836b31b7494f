package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/cellentry/pkg/cell"
	"github.com/charlie0129/cellentry/pkg/config"
	"github.com/charlie0129/cellentry/pkg/session"
	"github.com/charlie0129/cellentry/pkg/table"
)

func NewEntryCommand() *cobra.Command {
	exportPath := ""

	cmd := &cobra.Command{
		Use:     "entry",
		Short:   "Enter cells and currents interactively",
		GroupID: gBasic,
		Long: `Enter cells and currents interactively, without a daemon.

Step 1 asks for the number of cells and a chemistry label per cell.
Step 2 asks for the measured current of every registered cell. The result is
shown as a table and, with --export, written as CSV.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, defaultCount := localSessionOptions()
			f := newForm(cmd.InOrStdin(), cmd.OutOrStdout(), session.New("local", opts), defaultCount)
			if err := f.run(); err != nil {
				return err
			}
			if exportPath == "" {
				return nil
			}
			b, err := table.CSV(f.sess.Cells())
			if err != nil {
				return err
			}
			return writeExport(cmd.OutOrStdout(), exportPath, b)
		},
	}

	cmd.Flags().StringVarP(&exportPath, "export", "o", "", "write the result as CSV to this file (e.g. "+table.ExportFilename+"), - for stdout")

	return cmd
}

// localSessionOptions reads the config file for a session that lives in
// this process. A missing file means defaults.
func localSessionOptions() (session.Options, int) {
	conf, err := config.NewFile(configPath)
	if err != nil {
		logrus.Warnf("failed to load config, using defaults: %v", err)
		conf = config.NewFileFromConfig(nil, configPath)
	}
	return session.Options{
		CarryOverCurrents: conf.CarryOverCurrents(),
		Sampler:           cell.NewUniformSampler(conf.MinTemperature(), conf.MaxTemperature(), nil),
	}, conf.DefaultCellCount()
}

// form drives the two-phase workflow over a line-oriented terminal.
type form struct {
	in           *bufio.Reader
	out          io.Writer
	sess         *session.Session
	defaultCount int
}

func newForm(in io.Reader, out io.Writer, sess *session.Session, defaultCount int) *form {
	return &form{
		in:           bufio.NewReader(in),
		out:          out,
		sess:         sess,
		defaultCount: defaultCount,
	}
}

func (f *form) run() error {
	for {
		if err := f.registration(); err != nil {
			return err
		}
		if err := f.measurements(); err != nil {
			return err
		}

		printCells(f.out, f.sess.Cells())
		sum := f.sess.Summary()
		printSummary(f.out, &sum)

		again, err := f.ask("Register cell types again? [y/N]: ")
		if err != nil || !strings.EqualFold(again, "y") {
			// End of input here just means the user is done.
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (f *form) registration() error {
	fmt.Fprintln(f.out, bold("Step 1: Enter Cell Types"))

	count, err := f.askCount()
	if err != nil {
		return err
	}

	labels := make([]string, count)
	for i := range labels {
		labels[i], err = f.ask(fmt.Sprintf("Cell type #%d (e.g., lfp/nmc): ", i+1))
		if err != nil {
			return err
		}
	}

	cells, err := f.sess.Register(labels, count)
	if err != nil {
		return err
	}
	fmt.Fprintf(f.out, "Cell types saved: %d cell(s) registered.\n", len(cells))
	return nil
}

func (f *form) askCount() (int, error) {
	for {
		ans, err := f.ask(fmt.Sprintf("How many cells do you want to enter? (%d-%d) [%d]: ", cell.MinCount, cell.MaxCount, f.defaultCount))
		if err != nil {
			return 0, err
		}
		if ans == "" {
			return f.defaultCount, nil
		}
		n, err := strconv.Atoi(ans)
		if err == nil {
			err = cell.ValidateCount(n)
		}
		if err != nil {
			fmt.Fprintf(f.out, "Please enter a whole number between %d and %d.\n", cell.MinCount, cell.MaxCount)
			continue
		}
		return n, nil
	}
}

func (f *form) measurements() error {
	cells := f.sess.Cells()
	if len(cells) == 0 {
		return nil
	}

	fmt.Fprintln(f.out, bold("Step 2: Enter Current for Each Cell"))
	for _, c := range cells {
		for {
			ans, err := f.ask(fmt.Sprintf("Current for %s (A) [%s]: ", c.Key, table.FormatFloat(c.Current)))
			if err != nil {
				return err
			}
			if ans == "" {
				break
			}
			current, err := strconv.ParseFloat(ans, 64)
			if err == nil {
				_, err = f.sess.SetCurrent(c.Key, current)
			}
			if err != nil {
				fmt.Fprintln(f.out, "Please enter a number >= 0.")
				continue
			}
			break
		}
	}
	return nil
}

// ask prints a prompt and returns the trimmed answer. A final line without
// a newline still counts as an answer.
func (f *form) ask(prompt string) (string, error) {
	fmt.Fprint(f.out, prompt)
	line, err := f.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		fmt.Fprintln(f.out)
		return "", err
	}
	return strings.TrimSpace(line), nil
}
