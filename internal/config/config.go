// Package config resolves the run settings: a yaml file for everything a
// researcher tunes and the environment for the credential.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the yaml-sourced configuration. Zero values fall back to the
// defaults below.
type Config struct {
	StartYear  int `yaml:"start_year"`
	EndYear    int `yaml:"end_year"`
	AnchorYear int `yaml:"anchor_year"` // price-level reference year

	SeriesID string `yaml:"series_id"` // cost-of-living index series

	SampleSize   int     `yaml:"sample_size"`
	Seed         int64   `yaml:"seed"`
	TestFraction float64 `yaml:"test_fraction"`
	Trees        int     `yaml:"trees"`

	OutDir    string `yaml:"out_dir"`
	CachePath string `yaml:"cache_path"`

	SurveyURL string `yaml:"survey_url"`
	PriceURL  string `yaml:"price_url"`

	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// ClickHouseConfig drives the optional export of the model table.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Table    string `yaml:"table"`
}

// Secrets come from the environment, never from the yaml file.
type Secrets struct {
	CensusKey string `envconfig:"CENSUS_KEY"`
}

const envPrefix = "LEAVERS"

// Defaults returns a config for a ten-year run ending at the most recent
// survey year with published prices.
func Defaults() *Config {
	return &Config{
		StartYear:    2010,
		EndYear:      2019,
		AnchorYear:   2018,
		SeriesID:     "CUUR0000SA0",
		SampleSize:   100000,
		Seed:         270,
		TestFraction: 0.2,
		Trees:        100,
		OutDir:       "out",
		CachePath:    "leavers.db",
		SurveyURL:    "https://api.census.gov/data",
		PriceURL:     "https://api.bls.gov/publicAPI/v2/timeseries/data/",
	}
}

// Load reads the yaml file over the defaults. A missing file is not an
// error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, e := os.ReadFile(path)
	if e != nil {
		if os.IsNotExist(e) {
			return cfg, nil
		}

		return nil, fmt.Errorf("reading config file: %w", e)
	}

	if e = yaml.Unmarshal(data, cfg); e != nil {
		return nil, fmt.Errorf("parsing config file: %w", e)
	}

	return cfg, cfg.validate()
}

func (cfg *Config) validate() error {
	if cfg.StartYear > cfg.EndYear {
		return fmt.Errorf("start year %d after end year %d", cfg.StartYear, cfg.EndYear)
	}

	if cfg.AnchorYear < cfg.StartYear-1 || cfg.AnchorYear > cfg.EndYear {
		return fmt.Errorf("anchor year %d outside priced range [%d, %d]", cfg.AnchorYear, cfg.StartYear-1, cfg.EndYear)
	}

	if cfg.TestFraction <= 0.0 || cfg.TestFraction >= 1.0 {
		return fmt.Errorf("test fraction must be in (0,1), got %v", cfg.TestFraction)
	}

	if cfg.SampleSize <= 0 {
		return fmt.Errorf("sample size must be positive, got %d", cfg.SampleSize)
	}

	return nil
}

// LoadSecrets reads the environment. An empty credential is not an error
// here -- commands that never touch the survey api can run without it; the
// survey client rejects an empty key before any call.
func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if e := envconfig.Process(envPrefix, &s); e != nil {
		return nil, fmt.Errorf("reading environment: %w", e)
	}

	return &s, nil
}
