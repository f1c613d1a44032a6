package htmlshot

import (
	"context"
	"fmt"
	"time"
)

// stageID is the element id of the clone used by segmented captures.
const stageID = "htmlshot-stage"

// rect is a box in page-absolute CSS pixels.
type rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// surface is the page capability the capture orchestrator drives.
type surface interface {
	// prepare scrolls to the top and paints bg behind a transparent page.
	prepare(ctx context.Context, bg string) error
	// waitAssets waits for images and fonts. It reports false on timeout.
	waitAssets(ctx context.Context, timeout time.Duration) (bool, error)
	measure(ctx context.Context, sel Selectors) (Layout, error)
	boundingRect(ctx context.Context, selector string) (rect, error)
	setControlsVisible(ctx context.Context, selector string, visible bool) error
	// stage clones the container and returns the clone's box; unstage
	// removes it again.
	stage(ctx context.Context, sel Selectors, bg string) (rect, error)
	unstage(ctx context.Context) error
	rasterize(ctx context.Context, clip rect, scale float64) ([]byte, error)
}

// driver is what an engine must provide: evaluate a JavaScript function and
// take a clipped PNG screenshot.
type driver interface {
	eval(ctx context.Context, fn string, out any, args ...any) error
	screenshot(ctx context.Context, clip rect, scale float64) ([]byte, error)
}

// domSurface implements surface on top of any driver.
type domSurface struct {
	drv driver
}

func (s domSurface) prepare(ctx context.Context, bg string) error {
	if err := s.drv.eval(ctx, prepareScript, nil, bg); err != nil {
		return fmt.Errorf("htmlshot: preparing page: %w", err)
	}
	return nil
}

func (s domSurface) waitAssets(ctx context.Context, timeout time.Duration) (bool, error) {
	var loaded bool
	if err := s.drv.eval(ctx, waitAssetsScript, &loaded, timeout.Milliseconds()); err != nil {
		return false, fmt.Errorf("htmlshot: waiting for images: %w", err)
	}
	return loaded, nil
}

func (s domSurface) measure(ctx context.Context, sel Selectors) (Layout, error) {
	var l Layout
	if err := s.drv.eval(ctx, measureScript, &l, sel); err != nil {
		return Layout{}, fmt.Errorf("htmlshot: measuring layout: %w", err)
	}
	if err := l.normalize(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

func (s domSurface) boundingRect(ctx context.Context, selector string) (rect, error) {
	var r rect
	if err := s.drv.eval(ctx, rectScript, &r, selector); err != nil {
		return rect{}, fmt.Errorf("htmlshot: locating %s: %w", selector, err)
	}
	return r, nil
}

func (s domSurface) setControlsVisible(ctx context.Context, selector string, visible bool) error {
	if err := s.drv.eval(ctx, controlsScript, nil, selector, visible); err != nil {
		return fmt.Errorf("htmlshot: toggling controls: %w", err)
	}
	return nil
}

func (s domSurface) stage(ctx context.Context, sel Selectors, bg string) (rect, error) {
	var r rect
	if err := s.drv.eval(ctx, stageScript, &r, sel, bg, stageID); err != nil {
		return rect{}, fmt.Errorf("htmlshot: staging clone: %w", err)
	}
	return r, nil
}

func (s domSurface) unstage(ctx context.Context) error {
	if err := s.drv.eval(ctx, unstageScript, nil, stageID); err != nil {
		return fmt.Errorf("htmlshot: removing clone: %w", err)
	}
	return nil
}

func (s domSurface) rasterize(ctx context.Context, clip rect, scale float64) ([]byte, error) {
	if clip.Width <= 0 || clip.Height <= 0 {
		return nil, fmt.Errorf("htmlshot: empty capture window %.0fx%.0f", clip.Width, clip.Height)
	}
	buf, err := s.drv.screenshot(ctx, clip, scale)
	if err != nil {
		return nil, fmt.Errorf("htmlshot: screenshot: %w", err)
	}
	return buf, nil
}
