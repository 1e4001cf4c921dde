package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort             = "8090"
	DefaultMaxUploadBytes   = 52428800 // 50MB
	DefaultMaxFiles         = 50
	DefaultConcurrentReads  = 8
	DefaultResultTTL        = 1 * time.Hour
	DefaultPreviewRows      = 3
	DefaultPreviewCellWidth = 30
	DefaultDownloadFilename = "filtered_data.csv"
	DefaultHistoryRetention = 30 * 24 * time.Hour
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	MaxFiles       int   `yaml:"max_files"`

	// Batch processing
	MaxConcurrentReads int  `yaml:"max_concurrent_reads"`
	DedupeRecords      bool `yaml:"dedupe_records"`

	// Stored conversions
	ResultTTL time.Duration `yaml:"result_ttl"`

	// Preview and download
	PreviewRows      int    `yaml:"preview_rows"`
	PreviewCellWidth int    `yaml:"preview_cell_width"`
	DownloadFilename string `yaml:"download_filename"`

	// Conversion history; an empty path disables it.
	HistoryDB        string        `yaml:"history_db"`
	HistoryRetention time.Duration `yaml:"history_retention"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:               DefaultPort,
		MaxUploadBytes:     DefaultMaxUploadBytes,
		MaxFiles:           DefaultMaxFiles,
		MaxConcurrentReads: DefaultConcurrentReads,
		ResultTTL:          DefaultResultTTL,
		PreviewRows:        DefaultPreviewRows,
		PreviewCellWidth:   DefaultPreviewCellWidth,
		DownloadFilename:   DefaultDownloadFilename,
		HistoryRetention:   DefaultHistoryRetention,
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by REPORTCSV_CONFIG, and environment variables, in that order.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("REPORTCSV_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("REPORTCSV_API_KEY", cfg.APIKey)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.MaxFiles = envInt("MAX_FILES", cfg.MaxFiles)
	cfg.MaxConcurrentReads = envInt("MAX_CONCURRENT_READS", cfg.MaxConcurrentReads)
	cfg.DedupeRecords = envBool("DEDUPE_RECORDS", cfg.DedupeRecords)
	cfg.ResultTTL = envDuration("RESULT_TTL", cfg.ResultTTL)
	cfg.PreviewRows = envInt("PREVIEW_ROWS", cfg.PreviewRows)
	cfg.PreviewCellWidth = envInt("PREVIEW_CELL_WIDTH", cfg.PreviewCellWidth)
	cfg.DownloadFilename = envOr("DOWNLOAD_FILENAME", cfg.DownloadFilename)
	cfg.HistoryDB = envOr("HISTORY_DB", cfg.HistoryDB)
	cfg.HistoryRetention = envDuration("HISTORY_RETENTION", cfg.HistoryRetention)

	cfg.clamp()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) clamp() {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = DefaultMaxFiles
	}
	if c.MaxConcurrentReads <= 0 {
		c.MaxConcurrentReads = DefaultConcurrentReads
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = DefaultResultTTL
	}
	if c.PreviewRows <= 0 {
		c.PreviewRows = DefaultPreviewRows
	}
	if c.PreviewCellWidth <= 0 {
		c.PreviewCellWidth = DefaultPreviewCellWidth
	}
	if c.DownloadFilename == "" {
		c.DownloadFilename = DefaultDownloadFilename
	}
	if c.HistoryRetention <= 0 {
		c.HistoryRetention = DefaultHistoryRetention
	}
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if strings.ContainsAny(c.DownloadFilename, "/\\\"\r\n") {
		return fmt.Errorf("DOWNLOAD_FILENAME must be a bare file name, got %q", c.DownloadFilename)
	}
	if !strings.HasSuffix(strings.ToLower(c.DownloadFilename), ".csv") {
		return fmt.Errorf("DOWNLOAD_FILENAME must end in .csv, got %q", c.DownloadFilename)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
