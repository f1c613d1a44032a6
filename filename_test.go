package htmlshot

import (
	"testing"
	"time"
)

func TestFileName(t *testing.T) {
	at := time.Date(2025, time.November, 9, 7, 5, 0, 0, time.UTC)
	tests := []struct {
		topic string
		part  int
		want  string
	}{
		{"daily", 0, "Report_daily_20251109_0705.png"},
		{"daily", 1, "Report_daily_20251109_0705_part1.png"},
		{"daily", 12, "Report_daily_20251109_0705_part12.png"},
		{"", 0, "Report_report_20251109_0705.png"},
		{"hot news/AI", 2, "Report_hot-news-AI_20251109_0705_part2.png"},
		{"热点新闻", 0, "Report_热点新闻_20251109_0705.png"},
	}
	for _, tt := range tests {
		if got := FileName(tt.topic, at, tt.part); got != tt.want {
			t.Errorf("FileName(%q, %d) = %q, want %q", tt.topic, tt.part, got, tt.want)
		}
	}
}
