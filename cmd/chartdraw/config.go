package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/raykavin/chartdraw"
	"github.com/raykavin/chartdraw/pkg/annotation"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Storage kinds
const (
	storageNone   = "none"
	storageMemory = "memory"
	storageBunt   = "bunt"
	storageSQLite = "sqlite"
)

// Config is the merged view of flags, CHARTDRAW_* variables and the
// config file
type Config struct {
	Width      float64
	Height     float64
	PixelRatio float64
	BarSpacing float64
	Precision  int

	Candles    string
	Timeframe  string
	Resample   string
	HeikinAshi bool
	Drawings   string

	Storage     string
	StoragePath string
	Port        int

	Log chartdraw.LogConfig
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Config file (default ./chartdraw.yaml when present)")

	flags.Float64("width", 800, "Chart width in media pixels")
	flags.Float64("height", 400, "Chart height in media pixels")
	flags.Float64("pixel-ratio", 1, "Device pixels per media pixel")
	flags.Float64("bar-spacing", 6, "Distance between two bars in media pixels")
	flags.Int("precision", 2, "Price label precision")

	flags.String("candles", "", "Candles CSV file")
	flags.String("timeframe", "1h", "Timeframe of the candles file (e.g. 15m)")
	flags.String("resample", "", "Resample candles to this timeframe")
	flags.Bool("heikin-ashi", false, "Convert candles to Heikin-Ashi")
	flags.String("drawings", "", "Drawings document (.yaml or .json)")

	flags.String("storage", storageNone, "Drawing storage: none, memory, bunt or sqlite")
	flags.String("storage-path", "chartdraw.db", "Storage file of the bunt and sqlite storages")
	flags.Int("port", 8080, "Server port")

	flags.String("log-level", "info", "Log level")
	flags.String("log-backend", chartdraw.BackendZerolog, "Log backend: zerolog or logrus")
	flags.Bool("log-json", false, "Log as JSON")
	flags.Bool("log-color", true, "Colored console logs")
}

// newViper binds flags and environment variables to a fresh viper instance
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("chartdraw")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// readConfigFile loads the --config file, or ./chartdraw.yaml when it exists
func readConfigFile(v *viper.Viper) error {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", file, err)
		}
		return nil
	}

	v.SetConfigName("chartdraw")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Width:       v.GetFloat64("width"),
		Height:      v.GetFloat64("height"),
		PixelRatio:  v.GetFloat64("pixel-ratio"),
		BarSpacing:  v.GetFloat64("bar-spacing"),
		Precision:   v.GetInt("precision"),
		Candles:     v.GetString("candles"),
		Timeframe:   v.GetString("timeframe"),
		Resample:    v.GetString("resample"),
		HeikinAshi:  v.GetBool("heikin-ashi"),
		Drawings:    v.GetString("drawings"),
		Storage:     strings.ToLower(v.GetString("storage")),
		StoragePath: v.GetString("storage-path"),
		Port:        v.GetInt("port"),
		Log: chartdraw.LogConfig{
			Backend:    v.GetString("log-backend"),
			Level:      v.GetString("log-level"),
			TimeLayout: "2006-01-02 15:04:05",
			Colored:    v.GetBool("log-color"),
			JSON:       v.GetBool("log-json"),
		},
	}

	if cfg.Resample == "" {
		cfg.Resample = cfg.Timeframe
	}

	switch cfg.Storage {
	case "", storageNone:
		cfg.Storage = storageNone
	case storageMemory, storageBunt, storageSQLite:
	default:
		return cfg, fmt.Errorf("unknown storage: %s", cfg.Storage)
	}

	if cfg.PixelRatio <= 0 {
		return cfg, fmt.Errorf("invalid pixel ratio: %v", cfg.PixelRatio)
	}
	if cfg.Candles != "" && cfg.Timeframe == "" {
		return cfg, errors.New("candles need a timeframe")
	}

	return cfg, nil
}

// documentFormat picks the drawings document format from the file extension
func documentFormat(file string) annotation.Format {
	if strings.EqualFold(filepath.Ext(file), ".json") {
		return annotation.FormatJSON
	}
	return annotation.FormatYAML
}
