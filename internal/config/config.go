// Package config holds the chart run settings. Values come from built-in
// defaults, an optional YAML file, then command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/chart"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/ganttlog"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/timeline"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogFile    string        `yaml:"log_file"`
	OutputFile string        `yaml:"output_file"`
	RecordType string        `yaml:"record_type"`
	Window     time.Duration `yaml:"window"`
	Title      string        `yaml:"title"`

	// Optional sinks; empty disables them.
	Summary     bool   `yaml:"summary"`
	ReportFile  string `yaml:"report_file,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
	ExportDSN   string `yaml:"export_dsn,omitempty"`
	RedisAddr   string `yaml:"redis_addr,omitempty"`
}

func Default() Config {
	return Config{
		LogFile:    ganttlog.DefaultPath,
		OutputFile: chart.DefaultOutput,
		RecordType: ganttlog.DefaultRecordType,
		Window:     timeline.DefaultWindow,
		Title:      chart.DefaultTitle,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

func bind(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "scheduler log to read (.zst is decompressed)")
	fs.StringVar(&cfg.OutputFile, "out", cfg.OutputFile, "PNG file to write")
	fs.StringVar(&cfg.RecordType, "type", cfg.RecordType, "record type marker to keep")
	fs.DurationVar(&cfg.Window, "window", cfg.Window, "display window from the earliest start")
	fs.StringVar(&cfg.Title, "title", cfg.Title, "chart title")
	fs.BoolVar(&cfg.Summary, "summary", cfg.Summary, "print a per-task summary table")
	fs.StringVar(&cfg.ReportFile, "report", cfg.ReportFile, "write the per-task summary to a .csv or .json file")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus textfile metrics")
	fs.StringVar(&cfg.ExportDSN, "export-dsn", cfg.ExportDSN, "export executions to postgres:// URL or SQLite file")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "publish the run summary to Redis at host:port")
}

// Parse builds the configuration from command-line arguments. When -config
// is given, the file is loaded first and explicitly set flags override it.
func Parse(name string, args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	bind(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if *configPath != "" {
		fileCfg, err := Load(*configPath)
		if err != nil {
			return cfg, err
		}

		overrides := flag.NewFlagSet(name, flag.ContinueOnError)
		bind(overrides, &fileCfg)

		var setErr error
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "config" || setErr != nil {
				return
			}
			setErr = overrides.Set(f.Name, f.Value.String())
		})
		if setErr != nil {
			return cfg, setErr
		}
		cfg = fileCfg
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.LogFile == "" {
		errs = append(errs, errors.New("log file must be set"))
	}
	if c.OutputFile == "" {
		errs = append(errs, errors.New("output file must be set"))
	}
	if c.RecordType == "" {
		errs = append(errs, errors.New("record type must be set"))
	}
	if c.Window <= 0 {
		errs = append(errs, fmt.Errorf("window must be positive, got %s", c.Window))
	}

	return errors.Join(errs...)
}
