package htmlshot

import (
	"fmt"
	"strings"
	"time"
)

// FileName returns the output name for a capture taken at t. Part 0 names a
// whole-page image; parts from 1 up name the images of a segmented run:
//
//	Report_<topic>_<YYYYMMDD>_<HHmm>.png
//	Report_<topic>_<YYYYMMDD>_<HHmm>_part<N>.png
func FileName(topic string, t time.Time, part int) string {
	base := fmt.Sprintf("Report_%s_%s", sanitizeTopic(topic), t.Format("20060102_1504"))
	if part > 0 {
		return fmt.Sprintf("%s_part%d.png", base, part)
	}
	return base + ".png"
}

// sanitizeTopic keeps the topic usable as a single path element.
func sanitizeTopic(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "report"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, topic)
}
