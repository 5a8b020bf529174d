package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/table"
)

// datasetsCommand creates the datasets command, which lists the datasets
// of the configured source.
func (c *CLI) datasetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List datasets in the configured data directory or database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			src, err := c.openSource(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer src.Close()

			ids, err := src.List(ctx)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				printInfo("No datasets found in %s source", src.Name())
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(c.out, id)
			}
			return nil
		},
	}
	cmd.AddCommand(c.datasetsExportCommand())
	return cmd
}

// datasetsExportCommand writes one dataset of the configured source as a
// CSV or JSON table.
func (c *CLI) datasetsExportCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export <dataset>",
		Short: "Write a dataset as a CSV or JSON table",
		Long: `Export loads a dataset from the configured source and writes it as a
table that aggregate, render and print accept as a file argument.

The format follows the --output extension unless --format is given.`,
		Example: `  stacktree datasets export population
  stacktree datasets export sales -o sales.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			f, err := exportFormat(format, output)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg.Source = args[0]
			t, err := c.loadTable(ctx, runner, cfg, nil)
			if err != nil {
				return err
			}
			if output == "" {
				return writeTable(c.out, t, f)
			}
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := writeTable(file, t, f); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			printSuccess("Exported %d rows", t.Rows())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "table format: csv or json")
	return cmd
}

// exportFormat resolves the table format from the flag or the output
// extension, defaulting to csv.
func exportFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	switch format {
	case "", "csv":
		return "csv", nil
	case "json":
		return "json", nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid table format: %q (must be csv or json)", format)
	}
}

func writeTable(w io.Writer, t *table.Table, format string) error {
	if format == "json" {
		return table.WriteJSON(t, w)
	}
	return table.WriteCSV(t, w)
}
