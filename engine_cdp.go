package htmlshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// cdpEngine runs one headless Chrome through chromedp and opens a tab per
// capture.
type cdpEngine struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func newCDPEngine(cfg capturerConfig) (*cdpEngine, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("htmlshot: starting browser: %w", err)
	}

	return &cdpEngine{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

func (e *cdpEngine) open(ctx context.Context, targetURL string, cc CaptureConfig) (surface, func(), error) {
	tabCtx, tabCancel := chromedp.NewContext(e.browserCtx)
	// chromedp actions run on the tab context; tie it to the caller's.
	stop := context.AfterFunc(ctx, tabCancel)
	release := func() {
		stop()
		tabCancel()
	}

	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(cc.ViewportWidth), int64(cc.ViewportHeight)),
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		release()
		return nil, nil, fmt.Errorf("htmlshot: loading %s: %w", targetURL, err)
	}
	return domSurface{drv: cdpDriver{tab: tabCtx}}, release, nil
}

func (e *cdpEngine) close() {
	e.browserCancel()
	e.allocCancel()
}

// cdpDriver evaluates scripts and takes screenshots in one chromedp tab.
type cdpDriver struct {
	tab context.Context
}

func (d cdpDriver) eval(ctx context.Context, fn string, out any, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	expr, err := callExpression(fn, args...)
	if err != nil {
		return err
	}
	if out == nil {
		var discard json.RawMessage
		out = &discard
	}
	return chromedp.Run(d.tab, chromedp.Evaluate(expr, out,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		},
	))
}

func (d cdpDriver) screenshot(ctx context.Context, clip rect, scale float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf []byte
	err := chromedp.Run(d.tab, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithClip(&page.Viewport{
				X:      clip.X,
				Y:      clip.Y,
				Width:  clip.Width,
				Height: clip.Height,
				Scale:  scale,
			}).
			WithFromSurface(true).
			WithCaptureBeyondViewport(true).
			Do(ctx)
		return err
	}))
	return buf, err
}
