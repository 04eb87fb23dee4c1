package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"leavers/internal/config"
	"leavers/internal/frame"
	"leavers/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis pipeline",
	Long: `Fetches every configured survey year (through the cache), builds the
deflator, derives the feature table, fits the exploratory models and writes
the summary, the model table and the charts to the output directory.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	r, cfg, cleanup, e := newRunner()
	defer cleanup()
	if e != nil {
		return e
	}

	ctx := context.Background()

	summary, encoded, e := r.Run(ctx)
	if e != nil {
		return e
	}

	if e = summary.Write(os.Stdout); e != nil {
		return e
	}

	if e = summary.Plots(cfg.OutDir); e != nil {
		return e
	}

	if e = saveCSV(encoded, filepath.Join(cfg.OutDir, "model_table.csv")); e != nil {
		return e
	}

	if cfg.ClickHouse.Enabled {
		if e = exportClickHouse(ctx, cfg, encoded); e != nil {
			return e
		}
	}

	log.WithField("dir", cfg.OutDir).Info("artifacts written")

	return nil
}

func saveCSV(df *frame.DF, path string) error {
	if e := os.MkdirAll(filepath.Dir(path), 0o755); e != nil {
		return fmt.Errorf("creating output dir: %w", e)
	}

	f := frame.NewFiles()
	if e := f.Create(path); e != nil {
		return e
	}

	if e := f.Save(df); e != nil {
		_ = f.Close()
		return e
	}

	return f.Close()
}

func exportClickHouse(ctx context.Context, cfg *config.Config, df *frame.DF) error {
	ex, e := store.NewExporter(store.ExportOptions{
		Addr:     cfg.ClickHouse.Addr,
		Database: cfg.ClickHouse.Database,
		Username: cfg.ClickHouse.Username,
		Password: cfg.ClickHouse.Password,
	})
	if e != nil {
		return e
	}
	defer func() { _ = ex.Close() }()

	table := cfg.ClickHouse.Table
	if table == "" {
		table = "model_table"
	}

	if e = ex.Save(ctx, table, df); e != nil {
		return e
	}

	log.WithField("table", table).Info("model table exported")

	return nil
}
