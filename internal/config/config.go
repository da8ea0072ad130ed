package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nishad/gsefetch/internal/paths"
	"gopkg.in/yaml.v3"
)

// DefaultAccessions are processed when no accession is given on the command line.
var DefaultAccessions = []string{"GSE89408", "GSE59847", "GSE40598"}

// Config represents the gsefetch configuration
type Config struct {
	EUtils   EUtilsConfig   `yaml:"eutils"`
	Output   OutputConfig   `yaml:"output"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// EUtilsConfig contains NCBI E-utilities client settings
type EUtilsConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`    // raises the NCBI rate limit
	Tool      string `yaml:"tool"`       // sent as tool= per NCBI etiquette
	Email     string `yaml:"email"`      // sent as email= per NCBI etiquette
	RetMax    int    `yaml:"retmax"`     // esearch page size
	Timeout   int    `yaml:"timeout"`    // seconds, 0 waits forever
	BatchSize int    `yaml:"batch_size"` // esummary ids per request, 0 is unbounded
}

// OutputConfig contains output sink settings
type OutputConfig struct {
	ResultsDirectory string `yaml:"results_directory"`
	CreateDirs       bool   `yaml:"create_dirs"` // create microarray/ and rnaseq/ before writing
	SQLite           bool   `yaml:"sqlite"`      // also store summaries in SQLite
	SQLitePath       string `yaml:"sqlite_path"`
}

// PipelineConfig contains pipeline behaviour settings
type PipelineConfig struct {
	Strict     bool     `yaml:"strict"` // abort on failed remote calls instead of treating them as empty
	Accessions []string `yaml:"accessions"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	EnableCORS bool   `yaml:"enable_cors"`
}

// LoggingConfig selects the zap preset and level
type LoggingConfig struct {
	Env   string `yaml:"env"`   // local, dev or prod
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		EUtils: EUtilsConfig{
			BaseURL:   "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			Tool:      "gsefetch",
			RetMax:    1000,
			Timeout:   0,
			BatchSize: 0,
		},
		Output: OutputConfig{
			ResultsDirectory: paths.GetResultsPath(),
			CreateDirs:       false,
			SQLite:           false,
			SQLitePath:       paths.GetDatabasePath(),
		},
		Pipeline: PipelineConfig{
			Strict:     false,
			Accessions: append([]string(nil), DefaultAccessions...),
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Env:   "local",
			Level: "info",
		},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Return defaults if file doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.Output.ResultsDirectory = expandPath(config.Output.ResultsDirectory)
	config.Output.SQLitePath = expandPath(config.Output.SQLitePath)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the client cannot work with
func (c *Config) Validate() error {
	if c.EUtils.BaseURL == "" {
		return fmt.Errorf("eutils.base_url must not be empty")
	}
	if c.EUtils.RetMax <= 0 {
		return fmt.Errorf("eutils.retmax must be positive, got %d", c.EUtils.RetMax)
	}
	if c.EUtils.Timeout < 0 {
		return fmt.Errorf("eutils.timeout must not be negative, got %d", c.EUtils.Timeout)
	}
	if c.EUtils.BatchSize < 0 {
		return fmt.Errorf("eutils.batch_size must not be negative, got %d", c.EUtils.BatchSize)
	}
	if c.Output.ResultsDirectory == "" {
		return fmt.Errorf("output.results_directory must not be empty")
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("GSEFETCH_CONFIG"); path != "" {
		return path
	}

	// Check current directory
	if _, err := os.Stat("gsefetch.yaml"); err == nil {
		return "gsefetch.yaml"
	}

	p := paths.GetPaths()
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// RequestTimeout returns the HTTP timeout for E-utilities calls
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.EUtils.Timeout) * time.Second
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}

	return path
}
