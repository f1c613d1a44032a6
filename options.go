package htmlshot

import (
	"log/slog"
	"time"
)

// Engine selects the browser automation library behind a [Capturer].
type Engine int

const (
	// EngineChromedp drives Chrome through chromedp. This is the default.
	EngineChromedp Engine = iota
	// EngineRod drives Chrome through go-rod.
	EngineRod
)

func (e Engine) String() string {
	switch e {
	case EngineChromedp:
		return "chromedp"
	case EngineRod:
		return "rod"
	}
	return "unknown"
}

// ParseEngine converts "chromedp" or "rod" into an Engine.
func ParseEngine(s string) (Engine, bool) {
	switch s {
	case "", "chromedp", "cdp":
		return EngineChromedp, true
	case "rod":
		return EngineRod, true
	}
	return EngineChromedp, false
}

// capturerConfig holds internal configuration for a Capturer.
type capturerConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	engine       Engine
	stealth      bool
	logger       *slog.Logger
}

func defaultConfig() capturerConfig {
	return capturerConfig{
		timeout:  60 * time.Second,
		headless: "new",
		engine:   EngineChromedp,
	}
}

// Option configures a [Capturer].
type Option func(*capturerConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *capturerConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration of a single capture run, page load
// included. Defaults to 60 seconds. A zero or negative value disables the
// timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *capturerConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *capturerConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload fetches a compatible Chromium build when no browser path
// is configured. The build is cached between runs.
func WithAutoDownload() Option {
	return func(c *capturerConfig) {
		c.autoDownload = true
	}
}

// WithEngine selects the browser automation library.
func WithEngine(e Engine) Option {
	return func(c *capturerConfig) {
		c.engine = e
	}
}

// WithStealth opens rod tabs with automation fingerprints masked. It only
// affects [EngineRod].
func WithStealth() Option {
	return func(c *capturerConfig) {
		c.stealth = true
	}
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(c *capturerConfig) {
		c.logger = l
	}
}
