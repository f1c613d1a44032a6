package htmlshot

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// rodEngine runs one headless Chrome through go-rod and opens a tab per
// capture.
type rodEngine struct {
	lnch    *launcher.Launcher
	browser *rod.Browser
	stealth bool
}

func newRodEngine(cfg capturerConfig) (*rodEngine, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("hide-scrollbars")
	if cfg.chromePath != "" {
		l = l.Bin(cfg.chromePath)
	}
	if cfg.noSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("htmlshot: starting browser: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("htmlshot: connecting to browser: %w", err)
	}
	return &rodEngine{lnch: l, browser: b, stealth: cfg.stealth}, nil
}

func (e *rodEngine) open(ctx context.Context, targetURL string, cc CaptureConfig) (surface, func(), error) {
	var (
		p   *rod.Page
		err error
	)
	if e.stealth {
		p, err = stealth.Page(e.browser)
	} else {
		p, err = e.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("htmlshot: opening tab: %w", err)
	}
	release := func() { _ = p.Close() }

	tab := p.Context(ctx)
	if err := tab.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cc.ViewportWidth,
		Height:            cc.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		release()
		return nil, nil, fmt.Errorf("htmlshot: setting viewport: %w", err)
	}
	if err := tab.Navigate(targetURL); err != nil {
		release()
		return nil, nil, fmt.Errorf("htmlshot: loading %s: %w", targetURL, err)
	}
	if err := tab.WaitLoad(); err != nil {
		release()
		return nil, nil, fmt.Errorf("htmlshot: loading %s: %w", targetURL, err)
	}
	return domSurface{drv: rodDriver{page: p}}, release, nil
}

func (e *rodEngine) close() {
	_ = e.browser.Close()
	e.lnch.Cleanup()
}

// rodDriver evaluates scripts and takes screenshots in one rod page.
type rodDriver struct {
	page *rod.Page
}

func (d rodDriver) eval(ctx context.Context, fn string, out any, args ...any) error {
	res, err := d.page.Context(ctx).Eval(fn, args...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return res.Value.Unmarshal(out)
}

func (d rodDriver) screenshot(ctx context.Context, clip rect, scale float64) ([]byte, error) {
	return d.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      clip.X,
			Y:      clip.Y,
			Width:  clip.Width,
			Height: clip.Height,
			Scale:  scale,
		},
		FromSurface:           true,
		CaptureBeyondViewport: true,
	})
}
