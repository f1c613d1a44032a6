package htmlshot

import (
	"fmt"
	"sort"
)

// ElementKind identifies the semantic role of a measured report element.
type ElementKind string

// Element kinds recognised by the layout collector.
const (
	KindHeader       ElementKind = "header"
	KindErrorSection ElementKind = "error-section"
	KindGroupHeader  ElementKind = "group-header"
	KindItem         ElementKind = "item"
	KindNewSection   ElementKind = "new-section"
	KindFooter       ElementKind = "footer"
)

// Valid reports whether k is one of the known element kinds.
func (k ElementKind) Valid() bool {
	switch k {
	case KindHeader, KindErrorSection, KindGroupHeader, KindItem, KindNewSection, KindFooter:
		return true
	}
	return false
}

// LayoutElement is the vertical extent of one report element in CSS pixels,
// relative to the top edge of the container.
type LayoutElement struct {
	Kind   ElementKind `json:"kind"`
	Top    float64     `json:"top"`
	Bottom float64     `json:"bottom"`
	Height float64     `json:"height"`
}

// Layout is a snapshot of the container measured once per capture.
type Layout struct {
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Elements []LayoutElement `json:"elements"`
}

// normalize checks that the header leads and the footer closes the element
// list and orders everything in between by its top offset. The sort is
// stable so elements sharing a top edge keep their collection order.
func (l *Layout) normalize() error {
	n := len(l.Elements)
	if n < 2 || l.Elements[0].Kind != KindHeader || l.Elements[n-1].Kind != KindFooter {
		return ErrNoLayout
	}
	for i, el := range l.Elements {
		if !el.Kind.Valid() {
			return fmt.Errorf("htmlshot: element %d has unknown kind %q", i, el.Kind)
		}
		if (el.Kind == KindHeader) != (i == 0) || (el.Kind == KindFooter) != (i == n-1) {
			return fmt.Errorf("htmlshot: element %d: %s out of place", i, el.Kind)
		}
	}
	middle := l.Elements[1 : n-1]
	sort.SliceStable(middle, func(i, j int) bool {
		return middle[i].Top < middle[j].Top
	})
	return nil
}
