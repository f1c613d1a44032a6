package htmlshot

// PagePlan is a measured layout together with its segmentation.
type PagePlan struct {
	Layout    Layout    `json:"layout"`
	MaxHeight float64   `json:"max_height"`
	Segments  []Segment `json:"segments"`
}

// Coverage returns the summed span of all segments. For a valid plan it
// equals the container height.
func (p *PagePlan) Coverage() float64 {
	var total float64
	for _, s := range p.Segments {
		total += s.Span()
	}
	return total
}

// Result describes a finished capture run.
//
// Images holds every rendered image in part order; Files holds the location
// each one was delivered to by the [Sink], index-aligned with Images.
type Result struct {
	RunID  string
	Mode   Mode
	Plan   PagePlan
	Images []*Image
	Files  []string
}

// Len returns the number of images produced.
func (r *Result) Len() int {
	return len(r.Images)
}
