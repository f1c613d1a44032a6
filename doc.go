// Package htmlshot renders the report container of a web page into PNG
// images through headless Chrome (Chrome DevTools Protocol), either as one
// whole-page image or as several height-bounded parts.
//
// # Capturing
//
// For one-off captures use the package-level helpers:
//
//	res, err := htmlshot.CaptureFile(ctx, "report.html", htmlshot.ModeSegments, nil)
//
// For repeated captures create a [Capturer], which reuses the browser process:
//
//	c, err := htmlshot.NewCapturer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.CaptureHTML(ctx, html, htmlshot.ModeWhole, nil)
//	res, err  = c.CaptureURL(ctx, "https://example.com/report", htmlshot.ModeSegments, nil)
//	res, err  = c.CaptureFile(ctx, "report.html", htmlshot.ModeSegments, nil)
//
// Use [CaptureConfig] to control the scale, the maximum image height, the
// selectors of the report regions and where images are delivered:
//
//	cfg := &htmlshot.CaptureConfig{
//	    Topic:          "daily",
//	    Scale:          2,
//	    MaxImageHeight: 4000,
//	    Sink:           htmlshot.DirSink{Dir: "out"},
//	}
//	res, err := c.CaptureFile(ctx, "report.html", htmlshot.ModeSegments, cfg)
//
// Images are named Report_<topic>_<YYYYMMDD>_<HHmm>.png for whole-page
// captures and Report_<topic>_<YYYYMMDD>_<HHmm>_part<N>.png for parts.
//
// # Segmentation
//
// A segmented capture first measures the header, the optional error
// section, every group header and item, the optional new-items section and
// the footer of the container. [Plan] then cuts the container into parts no
// taller than MaxImageHeight/Scale CSS pixels, always on the trailing edge
// of an element. An element taller than the limit keeps a part of its own
// instead of being cut in two.
//
// The parts of a run cover the container exactly; [Stitch] stacks them back
// into the whole-page image.
//
// # Errors
//
// Every failed capture returns a [*CaptureError] matching
// [ErrCaptureFailed]. Its Delivered field lists the files saved before the
// failure.
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload]:
//
//	c, err := htmlshot.NewCapturer(htmlshot.WithAutoDownload())
package htmlshot
