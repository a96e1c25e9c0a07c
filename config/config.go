package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/ini.v1"

	"github.com/mevdschee/insertorder/graph"
)

// Config holds the insert ordering configuration
type Config struct {
	Batch    BatchConfig
	Database DatabaseConfig
	Metrics  MetricsConfig
}

// BatchConfig holds the ordering and batching settings of a flush
type BatchConfig struct {
	OrderInserts       bool
	StatementBatchSize int
	TieBreak           graph.TieBreak
	LogFlushes         bool
}

// DatabaseConfig holds the connection used by the command line tool
type DatabaseConfig struct {
	Driver string // sqlite3, mysql or postgres
	DSN    string
}

// MetricsConfig holds the metrics endpoint settings
type MetricsConfig struct {
	Listen string // empty disables the endpoint
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Batch: BatchConfig{
			OrderInserts:       true,
			StatementBatchSize: 50,
			TieBreak:           graph.TieBreakShape,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "file::memory:?_foreign_keys=on",
		},
	}
}

// Load reads configuration from an INI file with environment variable overrides
func Load(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return parse(cfg)
}

// LoadBytes reads configuration from INI data with environment variable overrides
func LoadBytes(data []byte) (*Config, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, err
	}
	return parse(cfg)
}

func parse(cfg *ini.File) (*Config, error) {
	def := Default()

	batch := cfg.Section("batch")
	tieBreak, err := graph.ParseTieBreak(batch.Key("tie_break").MustString(def.Batch.TieBreak.String()))
	if err != nil {
		return nil, err
	}
	database := cfg.Section("database")

	config := &Config{
		Batch: BatchConfig{
			OrderInserts:       batch.Key("order_inserts").MustBool(def.Batch.OrderInserts),
			StatementBatchSize: batch.Key("statement_batch_size").MustInt(def.Batch.StatementBatchSize),
			TieBreak:           tieBreak,
			LogFlushes:         batch.Key("log_flushes").MustBool(false),
		},
		Database: DatabaseConfig{
			Driver: database.Key("driver").MustString(def.Database.Driver),
			DSN:    database.Key("dsn").MustString(def.Database.DSN),
		},
		Metrics: MetricsConfig{
			Listen: cfg.Section("metrics").Key("listen").String(),
		},
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv applies INSERTORDER_* environment variable overrides
func (c *Config) applyEnv() error {
	if v := os.Getenv("INSERTORDER_ORDER_INSERTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("INSERTORDER_ORDER_INSERTS: %w", err)
		}
		c.Batch.OrderInserts = b
	}
	if v := os.Getenv("INSERTORDER_STATEMENT_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("INSERTORDER_STATEMENT_BATCH_SIZE: %w", err)
		}
		c.Batch.StatementBatchSize = n
	}
	if v := os.Getenv("INSERTORDER_TIE_BREAK"); v != "" {
		tb, err := graph.ParseTieBreak(v)
		if err != nil {
			return err
		}
		c.Batch.TieBreak = tb
	}
	if v := os.Getenv("INSERTORDER_DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("INSERTORDER_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("INSERTORDER_METRICS_LISTEN"); v != "" {
		c.Metrics.Listen = v
	}
	return nil
}

// Validate checks the configuration for values the engine cannot work with
func (c *Config) Validate() error {
	if c.Batch.StatementBatchSize <= 0 {
		return fmt.Errorf("%w: %d", ErrBatchSize, c.Batch.StatementBatchSize)
	}
	switch c.Database.Driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return fmt.Errorf("%w: %q", ErrDriver, c.Database.Driver)
	}
	return nil
}
