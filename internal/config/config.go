// Package config loads htmlshot settings from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	htmlshot "github.com/porticus-lab/go-html-shot"
)

// Config is the top-level configuration shared by the CLI and the server.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Capture CaptureConfig `yaml:"capture"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
}

// BrowserConfig controls the Chrome process.
type BrowserConfig struct {
	Engine       string        `yaml:"engine"` // chromedp | rod
	ChromePath   string        `yaml:"chrome_path"`
	NoSandbox    bool          `yaml:"no_sandbox"`
	AutoDownload bool          `yaml:"auto_download"`
	Stealth      bool          `yaml:"stealth"`
	Timeout      time.Duration `yaml:"timeout"`
}

// CaptureConfig mirrors the tunables of htmlshot.CaptureConfig.
type CaptureConfig struct {
	Topic          string             `yaml:"topic"`
	Scale          float64            `yaml:"scale"`
	MaxImageHeight float64            `yaml:"max_image_height"`
	Background     string             `yaml:"background"`
	ImageTimeout   time.Duration      `yaml:"image_timeout"`
	SettleDelay    time.Duration      `yaml:"settle_delay"`
	DownloadDelay  time.Duration      `yaml:"download_delay"`
	ViewportWidth  int                `yaml:"viewport_width"`
	ViewportHeight int                `yaml:"viewport_height"`
	Selectors      htmlshot.Selectors `yaml:"selectors"`
}

// OutputConfig controls where images are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig controls the HTTP trigger surface.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	InlineImages bool   `yaml:"inline_images"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	d := htmlshot.DefaultCaptureConfig()
	if c.Browser.Engine == "" {
		c.Browser.Engine = htmlshot.EngineChromedp.String()
	}
	if c.Browser.Timeout <= 0 {
		c.Browser.Timeout = 60 * time.Second
	}
	if c.Capture.Topic == "" {
		c.Capture.Topic = d.Topic
	}
	if c.Capture.Scale <= 0 {
		c.Capture.Scale = d.Scale
	}
	if c.Capture.MaxImageHeight <= 0 {
		c.Capture.MaxImageHeight = d.MaxImageHeight
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if _, ok := htmlshot.ParseEngine(c.Browser.Engine); !ok {
		return fmt.Errorf("config: unknown browser engine %q", c.Browser.Engine)
	}
	if c.Capture.Scale > 4 {
		return fmt.Errorf("config: scale %.2f out of range (0-4]", c.Capture.Scale)
	}
	return nil
}

// Options converts the browser section into Capturer options.
func (c *Config) Options() []htmlshot.Option {
	eng, _ := htmlshot.ParseEngine(c.Browser.Engine)
	opts := []htmlshot.Option{
		htmlshot.WithEngine(eng),
		htmlshot.WithTimeout(c.Browser.Timeout),
	}
	if c.Browser.ChromePath != "" {
		opts = append(opts, htmlshot.WithChromePath(c.Browser.ChromePath))
	}
	if c.Browser.NoSandbox {
		opts = append(opts, htmlshot.WithNoSandbox())
	}
	if c.Browser.AutoDownload {
		opts = append(opts, htmlshot.WithAutoDownload())
	}
	if c.Browser.Stealth {
		opts = append(opts, htmlshot.WithStealth())
	}
	return opts
}

// CaptureConfig converts the capture and output sections into a per-run
// htmlshot.CaptureConfig writing into the output directory.
func (c *Config) CaptureConfig() htmlshot.CaptureConfig {
	return htmlshot.CaptureConfig{
		Topic:          c.Capture.Topic,
		Selectors:      c.Capture.Selectors,
		Scale:          c.Capture.Scale,
		MaxImageHeight: c.Capture.MaxImageHeight,
		Background:     c.Capture.Background,
		ImageTimeout:   c.Capture.ImageTimeout,
		SettleDelay:    c.Capture.SettleDelay,
		DownloadDelay:  c.Capture.DownloadDelay,
		ViewportWidth:  c.Capture.ViewportWidth,
		ViewportHeight: c.Capture.ViewportHeight,
		Sink:           htmlshot.DirSink{Dir: c.Output.Dir},
	}
}
