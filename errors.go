package htmlshot

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Capturer].
	ErrClosed = errors.New("htmlshot: capturer is closed")

	// ErrCaptureFailed matches every error returned by a capture run.
	ErrCaptureFailed = errors.New("htmlshot: capture failed")

	// ErrNoLayout is returned when a measured layout lacks its header or footer.
	ErrNoLayout = errors.New("htmlshot: layout has no header or footer")

	// ErrInvalidParts is returned for a malformed or out-of-range part selection.
	ErrInvalidParts = errors.New("htmlshot: invalid part selection")
)

// Phase names the step of a capture run in which a failure occurred.
type Phase string

const (
	PhaseLoad      Phase = "load"
	PhaseMeasure   Phase = "measure"
	PhaseRasterize Phase = "rasterize"
	PhaseDeliver   Phase = "deliver"
)

// CaptureError reports a failed capture run. Delivered lists the files that
// reached the sink before the failure, so a segmented run that dies midway
// still tells the caller which parts were saved.
type CaptureError struct {
	Phase     Phase
	Part      int // 1-based part being processed, 0 when not segment-specific
	Delivered []string
	Err       error
}

func (e *CaptureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "htmlshot: capture failed during %s", e.Phase)
	if e.Part > 0 {
		fmt.Fprintf(&b, " (part %d)", e.Part)
	}
	if len(e.Delivered) > 0 {
		fmt.Fprintf(&b, " after delivering %d file(s)", len(e.Delivered))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both [ErrCaptureFailed] and the underlying cause.
func (e *CaptureError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCaptureFailed}
	}
	return []error{ErrCaptureFailed, e.Err}
}
