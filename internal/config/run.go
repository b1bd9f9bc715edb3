package config

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Output  OutputConfig  `yaml:"output"`
	Report  ReportConfig  `yaml:"report"`
	Trace   TraceConfig   `yaml:"trace"`
	Index   IndexConfig   `yaml:"index"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
	Batch   BatchConfig   `yaml:"batch"`
	Serve   ServeConfig   `yaml:"serve"`
}

type GridConfig struct {
	Size       int   `yaml:"size"`
	ReadHeader *bool `yaml:"read_header"`
}

// Header reports whether inputs start with a size line (default true).
func (g GridConfig) Header() bool { return g.ReadHeader == nil || *g.ReadHeader }

type OutputConfig struct {
	Path string `yaml:"path"`
}

type ReportConfig struct {
	Path     string `yaml:"path"`
	Validate *bool  `yaml:"validate"`
}

func (r ReportConfig) ShouldValidate() bool { return r.Validate == nil || *r.Validate }

type TraceConfig struct {
	Dir string `yaml:"dir"`
}

type IndexConfig struct {
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type BatchConfig struct {
	Workers  int   `yaml:"workers"`
	Seed     int64 `yaml:"seed"`
	Generate int   `yaml:"generate"`
	Boxes    int   `yaml:"boxes"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.fill()
	return cfg
}

func (c *Config) fill() {
	if c.Grid.Size == 0 {
		c.Grid.Size = 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = 8
	}
	if c.Batch.Seed == 0 {
		c.Batch.Seed = 12345
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = "127.0.0.1:8088"
	}
}

func (c *Config) Validate() error {
	if c.Grid.Size < 0 {
		return fmt.Errorf("%w: grid.size %d", ErrInvalidConfig, c.Grid.Size)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Batch.Workers < 1 || c.Batch.Generate < 0 || c.Batch.Boxes < 0 {
		return fmt.Errorf("%w: batch workers=%d generate=%d boxes=%d", ErrInvalidConfig, c.Batch.Workers, c.Batch.Generate, c.Batch.Boxes)
	}
	return nil
}
