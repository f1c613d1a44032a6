package htmlshot

import (
	"time"
)

// Mode selects between a single whole-page image and height-bounded parts.
type Mode int

const (
	// ModeWhole captures the container as one image.
	ModeWhole Mode = iota
	// ModeSegments captures the container as several images, each no taller
	// than [CaptureConfig.MaxImageHeight] device pixels.
	ModeSegments
)

func (m Mode) String() string {
	switch m {
	case ModeWhole:
		return "whole"
	case ModeSegments:
		return "segments"
	}
	return "unknown"
}

// ParseMode converts "whole" or "segments" into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "whole":
		return ModeWhole, true
	case "segments", "segmented":
		return ModeSegments, true
	}
	return ModeWhole, false
}

// CaptureConfig controls a single capture run.
//
// A nil CaptureConfig or zero-value fields use the defaults of
// [DefaultCaptureConfig].
type CaptureConfig struct {
	// Topic is embedded in output file names. Defaults to "report".
	Topic string

	// Selectors locates the report regions. Empty fields use
	// [DefaultSelectors].
	Selectors Selectors

	// Scale is the device pixel ratio of the rendered images. Defaults to 1.5.
	Scale float64

	// MaxImageHeight bounds the height of each part in device pixels.
	// Defaults to 5000.
	MaxImageHeight float64

	// Background is painted behind transparent regions. Defaults to "#ffffff".
	Background string

	// ImageTimeout bounds the wait for images and web fonts. Defaults to 10s.
	ImageTimeout time.Duration

	// SettleDelay is the pause that lets layout settle before each
	// rasterization. Defaults to 100ms.
	SettleDelay time.Duration

	// DownloadDelay separates consecutive deliveries of a segmented run.
	// Defaults to 100ms.
	DownloadDelay time.Duration

	// ViewportWidth and ViewportHeight size the browser window.
	// Default to 1280x800.
	ViewportWidth  int
	ViewportHeight int

	// Parts restricts a segmented run to the given 1-based parts, for
	// example "2", "1-3" or "1,4". Empty means all parts.
	Parts string

	// Sink receives the rendered images. Defaults to a [DirSink] on the
	// current directory.
	Sink Sink

	// Progress, when set, is called on every status change.
	Progress func(Progress)

	// Now supplies the timestamp used in file names. Defaults to time.Now.
	Now func() time.Time
}

// DefaultCaptureConfig returns a CaptureConfig with sensible defaults.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		Topic:          "report",
		Selectors:      DefaultSelectors(),
		Scale:          1.5,
		MaxImageHeight: 5000,
		Background:     "#ffffff",
		ImageTimeout:   10 * time.Second,
		SettleDelay:    100 * time.Millisecond,
		DownloadDelay:  100 * time.Millisecond,
		ViewportWidth:  1280,
		ViewportHeight: 800,
		Sink:           DirSink{Dir: "."},
		Now:            time.Now,
	}
}

// resolved returns a CaptureConfig with all zero values replaced by defaults.
func (c *CaptureConfig) resolved() CaptureConfig {
	d := DefaultCaptureConfig()
	if c == nil {
		return d
	}
	r := *c
	if r.Topic == "" {
		r.Topic = d.Topic
	}
	r.Selectors = r.Selectors.merged(d.Selectors)
	if r.Scale <= 0 {
		r.Scale = d.Scale
	}
	if r.MaxImageHeight <= 0 {
		r.MaxImageHeight = d.MaxImageHeight
	}
	if r.Background == "" {
		r.Background = d.Background
	}
	if r.ImageTimeout <= 0 {
		r.ImageTimeout = d.ImageTimeout
	}
	// Negative delays disable the pause; zero means default.
	if r.SettleDelay == 0 {
		r.SettleDelay = d.SettleDelay
	}
	if r.DownloadDelay == 0 {
		r.DownloadDelay = d.DownloadDelay
	}
	if r.ViewportWidth <= 0 {
		r.ViewportWidth = d.ViewportWidth
	}
	if r.ViewportHeight <= 0 {
		r.ViewportHeight = d.ViewportHeight
	}
	if r.Sink == nil {
		r.Sink = d.Sink
	}
	if r.Now == nil {
		r.Now = d.Now
	}
	return r
}

// maxSegmentHeight converts MaxImageHeight from device pixels to the CSS
// pixels the layout is measured in.
func (c *CaptureConfig) maxSegmentHeight() float64 {
	r := c.resolved()
	return r.MaxImageHeight / r.Scale
}
