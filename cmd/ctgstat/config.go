package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// Config collects the run parameters, sourced from the environment with an
// optional .env file.
type Config struct {
	DataPath string // CTGSTAT_DATA, .csv or .xlsx
	Seed     int64  // CTGSTAT_SEED
	PlotDir  string // CTGSTAT_PLOTDIR, plots skipped when empty
	LogLevel string // CTGSTAT_LOGLEVEL
}

// LoadConfig reads the environment, loading .env first if present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DataPath: os.Getenv("CTGSTAT_DATA"),
		Seed:     42,
		PlotDir:  os.Getenv("CTGSTAT_PLOTDIR"),
		LogLevel: os.Getenv("CTGSTAT_LOGLEVEL"),
	}
	if cfg.DataPath == "" {
		return Config{}, errors.NewValueError("LoadConfig", "CTGSTAT_DATA is not set")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if s := os.Getenv("CTGSTAT_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Config{}, errors.NewValueError("LoadConfig", "CTGSTAT_SEED must be an integer")
		}
		cfg.Seed = seed
	}
	return cfg, nil
}
