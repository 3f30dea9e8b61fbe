// Package config loads CLI flags and the BankProfile registry the rest
// of the module runs against, extending the teacher's flat flag.String
// set with the profile/watch/store options this expansion adds.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/insightdelivered/bank-statement-converter/internal/profile"
)

// Config is the fully-parsed CLI configuration for cmd/statementctl.
type Config struct {
	Bank           string
	Output         string
	IncludeHeader  bool
	Format         string // csv, xlsx, json
	Version        bool
	Help           bool
	Serve          bool
	Port           string
	Static         string
	ProfilesPath   string
	WatchDir       string
	WatchSchedule  string
	RequireStrict  bool
	DatabaseURL    string
	Debug          bool
	Inputs         []string
}

// Parse builds a Config from os.Args, mirroring the teacher's flag
// set (bank/output/header/version/help/serve/port/static) and adding
// this expansion's profile/watch/store/strict flags.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("statementctl", flag.ContinueOnError)
	cfg := &Config{}

	fs.StringVar(&cfg.Bank, "bank", "", "Bank profile id (auto-detected if omitted)")
	fs.StringVar(&cfg.Output, "output", "", "Output file path (defaults to input filename with the format's extension)")
	fs.BoolVar(&cfg.IncludeHeader, "header", true, "Include account metadata header rows in CSV output")
	fs.StringVar(&cfg.Format, "format", "csv", "Output format: csv, xlsx, or json")
	fs.BoolVar(&cfg.Version, "version", false, "Print version and exit")
	fs.BoolVar(&cfg.Help, "help", false, "Show usage help")
	fs.BoolVar(&cfg.Serve, "serve", false, "Start the HTTP API server instead of CLI mode")
	fs.StringVar(&cfg.Port, "port", "8080", "Port for the HTTP API server (used with --serve)")
	fs.StringVar(&cfg.Static, "static", "", "Path to a static UI build directory (used with --serve)")
	fs.StringVar(&cfg.ProfilesPath, "profiles", "", "Path to a YAML file of BankProfile definitions (built-in profiles used if omitted)")
	fs.StringVar(&cfg.WatchDir, "watch-dir", "", "Directory to re-scan on a schedule for new statement PDFs")
	fs.StringVar(&cfg.WatchSchedule, "watch-schedule", "@every 5m", "Cron schedule for --watch-dir re-scans")
	fs.BoolVar(&cfg.RequireStrict, "require-strict", false, "Exit non-zero if any period fails reconciliation or confidence is low")
	fs.StringVar(&cfg.DatabaseURL, "database-url", os.Getenv("STATEMENTCTL_DATABASE_URL"), "Postgres connection string for optional persistence (env STATEMENTCTL_DATABASE_URL)")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug-level logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Inputs = fs.Args()
	return cfg, nil
}

// LoadProfiles loads the profile registry named by ProfilesPath, or the
// built-in Metro/HSBC/Barclays profiles if it was left empty.
func (c *Config) LoadProfiles() (*profile.Registry, error) {
	if c.ProfilesPath == "" {
		return profile.Builtin()
	}
	reg, err := profile.LoadYAMLFile(c.ProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("config: loading profiles from %s: %w", c.ProfilesPath, err)
	}
	return reg, nil
}
