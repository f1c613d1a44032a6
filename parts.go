package htmlshot

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseParts converts a part selection into 0-based segment indices.
// Supported formats: "" (all), "3" (single part), "1-5" (range),
// "1,3,5" (list) and combinations such as "1-2,4". Duplicates are dropped
// and the order of first appearance is kept.
func ParseParts(spec string, total int) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	var indices []int
	seen := make(map[int]bool)
	add := func(p int) {
		if !seen[p] {
			indices = append(indices, p-1)
			seen[p] = true
		}
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				return nil, fmt.Errorf("%w: invalid part number %q", ErrInvalidParts, bounds[0])
			}
			end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				return nil, fmt.Errorf("%w: invalid part number %q", ErrInvalidParts, bounds[1])
			}
			if start < 1 || end > total || start > end {
				return nil, fmt.Errorf("%w: range %d-%d out of bounds (1-%d)", ErrInvalidParts, start, end, total)
			}
			for p := start; p <= end; p++ {
				add(p)
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid part number %q", ErrInvalidParts, part)
		}
		if p < 1 || p > total {
			return nil, fmt.Errorf("%w: part %d out of bounds (1-%d)", ErrInvalidParts, p, total)
		}
		add(p)
	}

	return indices, nil
}
