package main

import (
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	"leavers/internal/config"
	"leavers/internal/fetch"
	"leavers/internal/pipeline"
	"leavers/internal/store"
)

var (
	cfgFile   string
	cachePath string
	outDir    string
	noCache   bool
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "leavers",
	Short: "Characterize which workers exit the labor force",
	Long: `Leavers fetches labor-force survey microdata and a consumer price
index series, derives a model-ready feature table and fits exploratory
models (PCA, random forest) to characterize labor-force leavers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetHandler(cli.Default)
		log.SetLevel(log.InfoLevel)
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "cache file (default from config)")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "output directory (default from config)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "always refetch survey years")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")
}

// newRunner resolves config, secrets and the cache into a pipeline runner.
// The returned cleanup closes the cache; it is non-nil even on error.
func newRunner() (*pipeline.Runner, *config.Config, func(), error) {
	cleanup := func() {}

	cfg, e := config.Load(cfgFile)
	if e != nil {
		return nil, nil, cleanup, e
	}

	if cachePath != "" {
		cfg.CachePath = cachePath
	}

	if outDir != "" {
		cfg.OutDir = outDir
	}

	secrets, e := config.LoadSecrets()
	if e != nil {
		return nil, nil, cleanup, e
	}

	r := &pipeline.Runner{
		Cfg:    cfg,
		Survey: fetch.NewSurveyClient(cfg.SurveyURL, secrets.CensusKey),
		Price:  fetch.NewPriceClient(cfg.PriceURL),
	}

	if !noCache {
		var cache *store.Cache
		if cache, e = store.OpenCache(cfg.CachePath); e != nil {
			return nil, nil, cleanup, e
		}

		r.Cache = cache
		cleanup = func() { _ = cache.Close() }
	}

	return r, cfg, cleanup, nil
}
