package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"leavers/internal/fetch"
)

var deflatorCmd = &cobra.Command{
	Use:   "deflator",
	Short: "Fetch and print the price-level table",
	Long: `Fetches the configured price index series, builds the year-keyed
deflator table and prints it. The year labels are already shifted to the
survey year they serve.`,
	RunE: runDeflator,
}

func init() {
	rootCmd.AddCommand(deflatorCmd)
}

func runDeflator(cmd *cobra.Command, args []string) error {
	r, _, cleanup, e := newRunner()
	defer cleanup()
	if e != nil {
		return e
	}

	df, e := r.Deflator(context.Background())
	if e != nil {
		return e
	}

	yr, _ := df.Column(fetch.YearColumn)
	ratio, _ := df.Column(fetch.RatioColumn)
	infl, _ := df.Column(fetch.InflationColumn)

	fmt.Fprintf(os.Stdout, "%6s %10s %10s\n", "year", "ratio", "inflation")
	for row := 0; row < df.RowCount(); row++ {
		fmt.Fprintf(os.Stdout, "%6d %10.6f %10.6f\n",
			yr.ElementInt(row), ratio.ElementFloat(row), infl.ElementFloat(row))
	}

	return nil
}
