package htmlshot

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// engine is a running browser able to load pages into fresh tabs.
type engine interface {
	// open loads targetURL into a new tab. The returned func closes the tab.
	open(ctx context.Context, targetURL string, cc CaptureConfig) (surface, func(), error)
	close()
}

// Capturer renders report pages into PNG images.
//
// A Capturer manages a headless browser instance that is reused across
// captures. Each capture runs in its own tab, so a Capturer is safe for
// concurrent use.
//
// Call [Capturer.Close] when the Capturer is no longer needed to release
// browser resources.
type Capturer struct {
	cfg    capturerConfig
	eng    engine
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewCapturer creates a Capturer with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Capturer.Close] when finished.
func NewCapturer(opts ...Option) (*Capturer, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.autoDownload && cfg.chromePath == "" {
		if _, ok := lookBrowser(); !ok {
			path, err := resolveBrowser()
			if err != nil {
				return nil, err
			}
			cfg.chromePath = path
		}
	}

	var (
		eng engine
		err error
	)
	switch cfg.engine {
	case EngineRod:
		eng, err = newRodEngine(cfg)
	default:
		eng, err = newCDPEngine(cfg)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("htmlshot: browser started", "engine", cfg.engine, "chrome", cfg.chromePath)

	return newCapturer(cfg, eng, logger), nil
}

func newCapturer(cfg capturerConfig, eng engine, logger *slog.Logger) *Capturer {
	return &Capturer{cfg: cfg, eng: eng, logger: logger}
}

// Close releases all resources held by the Capturer, including the
// browser process. Close is idempotent.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.eng.close()
	return nil
}

// CaptureHTML renders an HTML document. If cc is nil,
// [DefaultCaptureConfig] values are used.
func (c *Capturer) CaptureHTML(ctx context.Context, html string, mode Mode, cc *CaptureConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	var res *Result
	err := withHTMLFile(html, func(target string) error {
		var err error
		res, err = c.capture(ctx, target, mode, cc)
		return err
	})
	return res, err
}

// CaptureURL renders the web page at rawURL. If cc is nil,
// [DefaultCaptureConfig] values are used.
func (c *Capturer) CaptureURL(ctx context.Context, rawURL string, mode Mode, cc *CaptureConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("htmlshot: invalid URL %q: %w", rawURL, err)
	}
	return c.capture(ctx, rawURL, mode, cc)
}

// CaptureFile renders a local HTML file. If cc is nil,
// [DefaultCaptureConfig] values are used.
func (c *Capturer) CaptureFile(ctx context.Context, path string, mode Mode, cc *CaptureConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	target, err := FileURL(path)
	if err != nil {
		return nil, err
	}
	return c.capture(ctx, target, mode, cc)
}

// PlanHTML measures an HTML document and returns its segmentation without
// rendering any image.
func (c *Capturer) PlanHTML(ctx context.Context, html string, cc *CaptureConfig) (*PagePlan, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	var plan *PagePlan
	err := withHTMLFile(html, func(target string) error {
		var err error
		plan, err = c.plan(ctx, target, cc)
		return err
	})
	return plan, err
}

// PlanURL measures the web page at rawURL and returns its segmentation.
func (c *Capturer) PlanURL(ctx context.Context, rawURL string, cc *CaptureConfig) (*PagePlan, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("htmlshot: invalid URL %q: %w", rawURL, err)
	}
	return c.plan(ctx, rawURL, cc)
}

// PlanFile measures a local HTML file and returns its segmentation.
func (c *Capturer) PlanFile(ctx context.Context, path string, cc *CaptureConfig) (*PagePlan, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	target, err := FileURL(path)
	if err != nil {
		return nil, err
	}
	return c.plan(ctx, target, cc)
}

// capture loads targetURL in a new tab and runs the requested mode.
func (c *Capturer) capture(ctx context.Context, targetURL string, mode Mode, cc *CaptureConfig) (*Result, error) {
	resolved := cc.resolved()

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	r := newRun(uuid.NewString(), resolved, nil, c.logger)
	r.log.Info("htmlshot: capture started", "mode", mode, "url", targetURL)

	surf, release, err := c.eng.open(ctx, targetURL, resolved)
	if err != nil {
		return nil, r.fail(PhaseLoad, 0, err)
	}
	defer release()
	r.surf = surf

	if mode == ModeSegments {
		return r.segments(ctx)
	}
	return r.whole(ctx)
}

func (c *Capturer) plan(ctx context.Context, targetURL string, cc *CaptureConfig) (*PagePlan, error) {
	resolved := cc.resolved()

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	surf, release, err := c.eng.open(ctx, targetURL, resolved)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := surf.prepare(ctx, resolved.Background); err != nil {
		return nil, err
	}
	r := newRun(uuid.NewString(), resolved, surf, c.logger)
	plan, err := r.plan(ctx)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Capturer) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// FileURL converts a local path into a file:// URL after checking that the
// file exists.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("htmlshot: resolving path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("htmlshot: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// withHTMLFile writes html to a temporary file and calls fn with its URL.
// The file is removed when fn returns.
func withHTMLFile(html string, fn func(target string) error) error {
	f, err := os.CreateTemp("", "htmlshot-*.html")
	if err != nil {
		return fmt.Errorf("htmlshot: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return fmt.Errorf("htmlshot: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("htmlshot: closing temp file: %w", err)
	}

	target, err := FileURL(name)
	if err != nil {
		return err
	}
	return fn(target)
}

// --- Package-level convenience functions ---

// CaptureHTML renders an HTML document using a temporary [Capturer].
// This is convenient for one-off captures. For repeated use, create a
// [Capturer] with [NewCapturer] to reuse the browser instance.
func CaptureHTML(ctx context.Context, html string, mode Mode, cc *CaptureConfig, opts ...Option) (*Result, error) {
	c, err := NewCapturer(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.CaptureHTML(ctx, html, mode, cc)
}

// CaptureURL renders a web page using a temporary [Capturer].
func CaptureURL(ctx context.Context, rawURL string, mode Mode, cc *CaptureConfig, opts ...Option) (*Result, error) {
	c, err := NewCapturer(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.CaptureURL(ctx, rawURL, mode, cc)
}

// CaptureFile renders a local HTML file using a temporary [Capturer].
func CaptureFile(ctx context.Context, path string, mode Mode, cc *CaptureConfig, opts ...Option) (*Result, error) {
	c, err := NewCapturer(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.CaptureFile(ctx, path, mode, cc)
}
