package htmlshot

// Selectors locates the report regions inside the page. Every field is a CSS
// selector; Header, Group, GroupHeader, Item, ErrorSection, NewSection and
// Footer are resolved inside Container.
type Selectors struct {
	Container    string `json:"container" yaml:"container"`
	Controls     string `json:"controls" yaml:"controls"`
	Header       string `json:"header" yaml:"header"`
	ErrorSection string `json:"errorSection" yaml:"error_section"`
	Group        string `json:"group" yaml:"group"`
	GroupHeader  string `json:"groupHeader" yaml:"group_header"`
	Item         string `json:"item" yaml:"item"`
	NewSection   string `json:"newSection" yaml:"new_section"`
	Footer       string `json:"footer" yaml:"footer"`
}

// DefaultSelectors returns the selectors of the stock report template.
func DefaultSelectors() Selectors {
	return Selectors{
		Container:    ".container",
		Controls:     ".save-buttons",
		Header:       ".header",
		ErrorSection: ".error-section",
		Group:        ".word-group",
		GroupHeader:  ".word-header",
		Item:         ".news-item",
		NewSection:   ".new-section",
		Footer:       ".footer",
	}
}

// merged fills the empty fields of s from d.
func (s Selectors) merged(d Selectors) Selectors {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.Container, d.Container)
	fill(&s.Controls, d.Controls)
	fill(&s.Header, d.Header)
	fill(&s.ErrorSection, d.ErrorSection)
	fill(&s.Group, d.Group)
	fill(&s.GroupHeader, d.GroupHeader)
	fill(&s.Item, d.Item)
	fill(&s.NewSection, d.NewSection)
	fill(&s.Footer, d.Footer)
	return s
}
