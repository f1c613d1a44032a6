package htmlshot

import "fmt"

// Status is the state of a capture run as seen by whoever triggered it.
type Status int

const (
	StatusIdle Status = iota
	StatusAnalyzing
	StatusRendering
	StatusSaving
	StatusSaved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAnalyzing:
		return "analyzing"
	case StatusRendering:
		return "rendering"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Progress is one status update of a capture run. Part and Total are set
// while rendering or saving the parts of a segmented run.
type Progress struct {
	RunID  string
	Status Status
	Part   int
	Total  int
}

// Label renders the update as a short human readable text.
func (p Progress) Label() string {
	switch p.Status {
	case StatusAnalyzing:
		return "Analyzing..."
	case StatusRendering, StatusSaving:
		verb := "Rendering"
		if p.Status == StatusSaving {
			verb = "Saving"
		}
		if p.Total > 0 {
			return fmt.Sprintf("%s (%d/%d)...", verb, p.Part, p.Total)
		}
		return verb + "..."
	case StatusSaved:
		if p.Total > 1 {
			return fmt.Sprintf("Saved %d images!", p.Total)
		}
		return "Saved!"
	case StatusFailed:
		return "Save failed"
	}
	return ""
}
