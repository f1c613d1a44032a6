package htmlshot

// Segment is a contiguous vertical slice of the container rendered as one
// image. Start and End are CSS pixels relative to the container top; Height
// is the content height accumulated while the segment was being extended.
type Segment struct {
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Height         float64 `json:"height"`
	IncludesHeader bool    `json:"includes_header"`
}

// Span returns the rendered height of the segment.
func (s Segment) Span() float64 {
	return s.End - s.Start
}

// Plan partitions the layout into segments whose spans do not exceed
// maxHeight. Boundaries always fall on the trailing edge of an element and
// never move backwards, so elements without a layout box or lying above the
// open segment are ignored.
//
// When the layout starts with a header, the header and the element that
// follows it always share the first segment. Otherwise the first segment
// opens at 0 with the first element. An element taller than maxHeight gets
// a segment of its own rather than being cut. The last segment is closed at
// the container height, so the segments cover [0, l.Height] exactly.
func Plan(l Layout, maxHeight float64) []Segment {
	els := l.Elements
	if len(els) == 0 {
		if l.Height <= 0 {
			return nil
		}
		return []Segment{{Start: 0, End: l.Height, Height: l.Height}}
	}

	var (
		segments []Segment
		cur      Segment
		// Trailing edge of the lowest element placed so far.
		last float64
	)
	if els[0].Kind == KindHeader {
		cur = Segment{Height: els[0].Bottom, End: els[0].Bottom, IncludesHeader: true}
		last = max(els[0].Bottom, 0)
		els = els[1:]
	}
	// Elements held by cur besides the header. A segment may only be closed
	// once it carries something other than the header.
	content := 0

	for _, el := range els {
		if el.Bottom <= cur.Start {
			continue
		}
		potential := el.Bottom - cur.Start
		if potential > maxHeight && content > 0 && el.Bottom > last {
			cur.End = last
			segments = append(segments, cur)
			cur = Segment{
				Start:  last,
				End:    el.Bottom,
				Height: el.Bottom - last,
			}
			content = 1
			last = el.Bottom
			continue
		}
		last = max(last, el.Bottom)
		cur.Height = max(cur.Height, potential)
		cur.End = last
		content++
	}

	if l.Height > cur.Start {
		cur.End = l.Height
	}
	if cur.End > cur.Start {
		segments = append(segments, cur)
	}
	return segments
}
