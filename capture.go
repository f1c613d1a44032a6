package htmlshot

import (
	"context"
	"log/slog"
	"time"
)

// cleanupTimeout bounds the page cleanup that runs after a capture, even
// when the capture context is already cancelled.
const cleanupTimeout = 5 * time.Second

// run is one capture invocation against a loaded page.
type run struct {
	id   string
	cfg  CaptureConfig // resolved
	surf surface
	log  *slog.Logger

	delivered []string
}

func newRun(id string, cfg CaptureConfig, surf surface, log *slog.Logger) *run {
	return &run{id: id, cfg: cfg, surf: surf, log: log.With("run_id", id)}
}

func (r *run) emit(status Status, part, total int) {
	if r.cfg.Progress != nil {
		r.cfg.Progress(Progress{RunID: r.id, Status: status, Part: part, Total: total})
	}
}

// fail wraps err as a CaptureError and reports the failed status.
func (r *run) fail(phase Phase, part int, err error) error {
	r.log.Error("htmlshot: capture failed", "phase", phase, "part", part, "error", err)
	r.emit(StatusFailed, part, 0)
	r.emit(StatusIdle, 0, 0)
	return &CaptureError{
		Phase:     phase,
		Part:      part,
		Delivered: append([]string(nil), r.delivered...),
		Err:       err,
	}
}

// hidingControls runs fn with the action controls hidden and restores them
// afterwards on every path.
func (r *run) hidingControls(ctx context.Context, fn func() error) error {
	sel := r.cfg.Selectors.Controls
	if err := r.surf.setControlsVisible(ctx, sel, false); err != nil {
		return err
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()
		if err := r.surf.setControlsVisible(cctx, sel, true); err != nil {
			r.log.Warn("htmlshot: restoring controls", "error", err)
		}
	}()
	return fn()
}

// withStage runs fn against a fresh clone of the container. The clone is
// removed before withStage returns, whether fn succeeds or not.
func (r *run) withStage(ctx context.Context, fn func(origin rect) error) error {
	origin, err := r.surf.stage(ctx, r.cfg.Selectors, r.cfg.Background)
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()
		if err := r.surf.unstage(cctx); err != nil {
			r.log.Warn("htmlshot: removing clone", "error", err)
		}
	}()
	return fn(origin)
}

func (r *run) waitAssets(ctx context.Context) error {
	loaded, err := r.surf.waitAssets(ctx, r.cfg.ImageTimeout)
	if err != nil {
		return err
	}
	if !loaded {
		r.log.Warn("htmlshot: image timeout elapsed, capturing anyway", "timeout", r.cfg.ImageTimeout)
	}
	return nil
}

// whole renders the full container as a single image.
func (r *run) whole(ctx context.Context) (*Result, error) {
	r.emit(StatusRendering, 0, 0)
	if err := r.surf.prepare(ctx, r.cfg.Background); err != nil {
		return nil, r.fail(PhaseLoad, 0, err)
	}

	var (
		box  rect
		data []byte
	)
	err := r.hidingControls(ctx, func() error {
		if err := sleep(ctx, r.cfg.SettleDelay); err != nil {
			return err
		}
		if err := r.waitAssets(ctx); err != nil {
			return err
		}
		var err error
		if box, err = r.surf.boundingRect(ctx, r.cfg.Selectors.Container); err != nil {
			return err
		}
		data, err = r.surf.rasterize(ctx, box, r.cfg.Scale)
		return err
	})
	if err != nil {
		return nil, r.fail(PhaseRasterize, 0, err)
	}

	seg := Segment{Start: 0, End: box.Height, Height: box.Height, IncludesHeader: true}
	res := &Result{
		RunID: r.id,
		Mode:  ModeWhole,
		Plan: PagePlan{
			Layout:    Layout{Width: box.Width, Height: box.Height},
			MaxHeight: box.Height,
			Segments:  []Segment{seg},
		},
	}
	img := &Image{Name: FileName(r.cfg.Topic, r.cfg.Now(), 0), Segment: seg, data: data}
	res.Images = []*Image{img}

	r.emit(StatusSaving, 0, 0)
	if err := r.deliver(ctx, img); err != nil {
		return nil, r.fail(PhaseDeliver, 0, err)
	}
	res.Files = r.delivered

	r.log.Info("htmlshot: whole page captured", "file", res.Files[0], "bytes", img.Len())
	r.emit(StatusSaved, 1, 1)
	r.emit(StatusIdle, 0, 0)
	return res, nil
}

// plan measures the page and segments it.
func (r *run) plan(ctx context.Context) (PagePlan, error) {
	layout, err := r.surf.measure(ctx, r.cfg.Selectors)
	if err != nil {
		return PagePlan{}, err
	}
	maxHeight := r.cfg.maxSegmentHeight()
	return PagePlan{
		Layout:    layout,
		MaxHeight: maxHeight,
		Segments:  Plan(layout, maxHeight),
	}, nil
}

// segments renders the container as height-bounded parts, one staged clone
// at a time, then delivers the parts in order.
func (r *run) segments(ctx context.Context) (*Result, error) {
	r.emit(StatusAnalyzing, 0, 0)
	if err := r.surf.prepare(ctx, r.cfg.Background); err != nil {
		return nil, r.fail(PhaseLoad, 0, err)
	}

	plan, err := r.plan(ctx)
	if err != nil {
		return nil, r.fail(PhaseMeasure, 0, err)
	}
	selected, err := ParseParts(r.cfg.Parts, len(plan.Segments))
	if err != nil {
		return nil, r.fail(PhaseMeasure, 0, err)
	}
	total := len(selected)
	r.log.Info("htmlshot: layout segmented",
		"elements", len(plan.Layout.Elements),
		"height", plan.Layout.Height,
		"max_height", plan.MaxHeight,
		"segments", len(plan.Segments),
		"selected", total)

	res := &Result{RunID: r.id, Mode: ModeSegments, Plan: plan}
	r.emit(StatusRendering, 0, total)

	part := 0
	err = r.hidingControls(ctx, func() error {
		if err := r.waitAssets(ctx); err != nil {
			return err
		}
		for i, idx := range selected {
			seg := plan.Segments[idx]
			part = idx + 1
			r.emit(StatusRendering, i+1, total)

			err := r.withStage(ctx, func(origin rect) error {
				if err := sleep(ctx, r.cfg.SettleDelay); err != nil {
					return err
				}
				clip := rect{
					X:      origin.X,
					Y:      origin.Y + seg.Start,
					Width:  plan.Layout.Width,
					Height: seg.Span(),
				}
				data, err := r.surf.rasterize(ctx, clip, r.cfg.Scale)
				if err != nil {
					return err
				}
				res.Images = append(res.Images, &Image{Part: part, Segment: seg, data: data})
				return nil
			})
			if err != nil {
				return err
			}
			r.log.Debug("htmlshot: part rendered", "part", part, "start", seg.Start, "end", seg.End)
		}
		return nil
	})
	if err != nil {
		return nil, r.fail(PhaseRasterize, part, err)
	}

	now := r.cfg.Now()
	for i, img := range res.Images {
		img.Name = FileName(r.cfg.Topic, now, img.Part)
		if i > 0 {
			if err := sleep(ctx, r.cfg.DownloadDelay); err != nil {
				return nil, r.fail(PhaseDeliver, img.Part, err)
			}
		}
		r.emit(StatusSaving, i+1, total)
		if err := r.deliver(ctx, img); err != nil {
			return nil, r.fail(PhaseDeliver, img.Part, err)
		}
	}
	res.Files = r.delivered

	r.log.Info("htmlshot: segments captured", "files", len(res.Files))
	r.emit(StatusSaved, total, total)
	r.emit(StatusIdle, 0, 0)
	return res, nil
}

func (r *run) deliver(ctx context.Context, img *Image) error {
	loc, err := r.cfg.Sink.Save(ctx, img)
	if err != nil {
		return err
	}
	r.delivered = append(r.delivered, loc)
	return nil
}

// sleep pauses for d or until ctx is done. Non-positive durations return
// immediately.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
