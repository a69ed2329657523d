// Package config loads the livestatusd YAML configuration.
package config

import (
	"fmt"
	"net"
	"os"

	"github.com/cuemby/livestatus/pkg/log"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen        = "127.0.0.1:50000"
	DefaultMetricsListen = "127.0.0.1:9150"
	DefaultLogLevel      = "info"
)

// Config is the livestatusd configuration file. Every field is optional.
type Config struct {
	Listen       string        `yaml:"listen"`
	Socket       string        `yaml:"socket"`
	Feed         FeedConfig    `yaml:"feed"`
	Metrics      MetricsConfig `yaml:"metrics"`
	Log          LogConfig     `yaml:"log"`
	PnpPath      string        `yaml:"pnp_path"`
	LogArchive   string        `yaml:"log_archive"`
	MaxLogEvents int           `yaml:"max_log_events"`
}

// FeedConfig selects the sources of state-change records
type FeedConfig struct {
	Listen  string `yaml:"listen"`
	File    string `yaml:"file"`
	TailLog string `yaml:"tail_log"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used without a file
func Default() *Config {
	c := &Config{}
	setDefaults(c)
	return c
}

// Load reads a YAML file, applies defaults and validates the result
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

func setDefaults(c *Config) {
	if c.Listen == "" && c.Socket == "" {
		c.Listen = DefaultListen
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = DefaultMetricsListen
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks addresses and limits
func (c *Config) Validate() error {
	for name, addr := range map[string]string{
		"listen":         c.Listen,
		"feed.listen":    c.Feed.Listen,
		"metrics.listen": c.Metrics.Listen,
	} {
		if addr == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if c.MaxLogEvents < 0 {
		return fmt.Errorf("max_log_events: must not be negative")
	}
	return nil
}
