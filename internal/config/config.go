package config

import (
	"flag"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	InventoryPath string
	ReportDir     string
	DBPath        string
	Addr          string

	Profile   string
	Module    int
	FirstPort int
	LastPort  int

	Username   string
	Password   string
	SSHTimeout int // in seconds

	Workers int
	DryRun  bool
	Serve   bool
	Debug   bool
}

// Load parses command line flags and environment variables to populate
// Config. Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.InventoryPath = getEnv("PROFILESYNC_INVENTORY", "inventory.yaml")
	cfg.ReportDir = getEnv("PROFILESYNC_REPORT_DIR", "reports")
	cfg.DBPath = getEnv("PROFILESYNC_DB", "profilesync.db")
	cfg.Addr = getEnv("PROFILESYNC_ADDR", ":8080")
	cfg.Profile = getEnv("PROFILESYNC_PROFILE", "BAREMETAL")
	cfg.Module = getEnvInt("PROFILESYNC_MODULE", 1)
	cfg.FirstPort = getEnvInt("PROFILESYNC_FIRST_PORT", 2)
	cfg.LastPort = getEnvInt("PROFILESYNC_LAST_PORT", 46)
	cfg.Username = getEnv("PROFILESYNC_SSH_USER", "")
	cfg.Password = getEnv("PROFILESYNC_SSH_PASSWORD", "")
	cfg.Workers = getEnvInt("PROFILESYNC_WORKERS", 8)

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.InventoryPath, "inventory", cfg.InventoryPath, "Path to the YAML device inventory")
	flag.StringVar(&cfg.ReportDir, "reports", cfg.ReportDir, "Directory for diff and outcome reports")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite run-history database")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Status server address")
	flag.StringVar(&cfg.Profile, "profile", cfg.Profile, "Target port-profile name")
	flag.IntVar(&cfg.Module, "module", cfg.Module, "Physical module of the target interfaces")
	flag.IntVar(&cfg.FirstPort, "first-port", cfg.FirstPort, "First port of the target range (inclusive)")
	flag.IntVar(&cfg.LastPort, "last-port", cfg.LastPort, "Last port of the target range (inclusive)")
	flag.StringVar(&cfg.Username, "user", cfg.Username, "SSH username (prompted if empty)")
	flag.IntVar(&cfg.SSHTimeout, "ssh-timeout", 30, "SSH dial timeout in seconds")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of devices reconciled in parallel")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Classify and report only, never push configuration")
	flag.BoolVar(&cfg.Serve, "serve", false, "Keep the status server running after the run")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")

	flag.Parse()

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
