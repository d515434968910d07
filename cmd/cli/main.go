package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"cmegrid/internal/config"
	"cmegrid/internal/container"
	"cmegrid/internal/report"

	"github.com/spf13/cobra"
)

func main() {
	config.LoadDotEnv(log.Default())

	rootCmd := &cobra.Command{
		Use:           "cmegrid",
		Short:         "Classify SOHO/LASCO CMEs by linear speed and angular width",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newRenderCmd(),
		newProfileCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment; flags applied afterwards override it
func loadConfig() (*config.Config, error) {
	return config.Load()
}

func newContainer(ctx context.Context, cfg *config.Config) (*container.Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return container.New(ctx, cfg)
}

func newRunCmd() *cobra.Command {
	var outputDir, sheet, archiveDSN, archiveDriver string
	var lenient, noCharts bool

	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Classify the input spreadsheet and write tables and charts",
		Long: `Load the spreadsheet, bucket every CME by speed and angular width range,
write the detailed and pivot tables, and render the heatmap and bar chart.

Example: cmegrid run Datos_soho-lasco.xlsx --output-dir out --archive-dsn runs.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Input.File = args[0]
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.Output.Dir = outputDir
			}
			if cmd.Flags().Changed("sheet") {
				cfg.Input.Sheet = sheet
			}
			if lenient {
				cfg.Input.StrictColumns = false
			}
			if noCharts {
				cfg.Output.SkipCharts = true
			}
			if cmd.Flags().Changed("archive-dsn") {
				cfg.Archive.DSN = archiveDSN
			}
			if cmd.Flags().Changed("archive-driver") {
				cfg.Archive.Driver = archiveDriver
			}

			c, err := newContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			result, err := c.Service.Run(cmd.Context(), c.RunRequest())
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), report.Summary{
				RunID:       result.RunID.String(),
				Source:      result.Dataset.Source,
				Records:     result.Dataset.Len(),
				Classified:  result.Results.Total(),
				Fingerprint: result.Fingerprint.Short(),
				Pivot:       result.Pivot,
				Profiles:    result.Profiles,
				Artifacts:   result.Artifacts,
				RuntimeMs:   result.RuntimeMs,
			})
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "Directory for tables and charts")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "Treat a missing measurement column as all-missing instead of failing")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "Skip heatmap and bar chart rendering")
	cmd.Flags().StringVar(&archiveDSN, "archive-dsn", "", "Archive run results to this database")
	cmd.Flags().StringVar(&archiveDriver, "archive-driver", config.DefaultArchiveDriver, "Archive driver (sqlite3|postgres)")

	return cmd
}

func newRenderCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "render [pivot.xlsx]",
		Short: "Render the charts from a previously written pivot table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.Output.Dir = outputDir
			}
			pivotPath := cfg.Output.PivotPath()
			if len(args) == 1 {
				pivotPath = args[0]
			}
			cfg.Archive.DSN = ""

			c, err := newContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			pivot, artifacts, err := c.Service.RenderFromFile(cmd.Context(), pivotPath, container.OutputPaths(cfg.Output))
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), report.Summary{
				Source:     pivotPath,
				Classified: pivot.Total(),
				Pivot:      pivot,
				Artifacts:  artifacts,
			})
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "Directory for the charts")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var sheet string
	var lenient bool

	cmd := &cobra.Command{
		Use:   "profile [input]",
		Short: "Summarise the speed and width columns without writing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Input.File = args[0]
			}
			if cmd.Flags().Changed("sheet") {
				cfg.Input.Sheet = sheet
			}
			if lenient {
				cfg.Input.StrictColumns = false
			}
			cfg.Archive.DSN = ""

			c, err := newContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			ds, profiles, err := c.Service.Profile(cmd.Context(), c.RunRequest().Input)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), report.Summary{
				Source:     ds.Source,
				Records:    ds.Len(),
				Classified: ds.Complete(),
				Profiles:   profiles,
			})
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "Tolerate a missing measurement column")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int
	var archiveDSN, archiveDriver string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("archive-dsn") {
				cfg.Archive.DSN = archiveDSN
			}
			if cmd.Flags().Changed("archive-driver") {
				cfg.Archive.Driver = archiveDriver
			}

			c, err := newContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			runs, err := c.Service.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs (0 for all)")
	cmd.Flags().StringVar(&archiveDSN, "archive-dsn", "", "Archive database")
	cmd.Flags().StringVar(&archiveDriver, "archive-driver", config.DefaultArchiveDriver, "Archive driver (sqlite3|postgres)")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
