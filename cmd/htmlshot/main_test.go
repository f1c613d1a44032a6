package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	htmlshot "github.com/porticus-lab/go-html-shot"
)

func testPlan() *htmlshot.PagePlan {
	return &htmlshot.PagePlan{
		Layout:    htmlshot.Layout{Width: 600, Height: 4200},
		MaxHeight: 2000,
		Segments: []htmlshot.Segment{
			{Start: 0, End: 1800, Height: 1800, IncludesHeader: true},
			{Start: 1800, End: 4200, Height: 2400},
		},
	}
}

func TestWritePlan_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := writePlan(&buf, testPlan(), "text"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Container: 600 x 4200 px",
		"Parts:     2",
		"Part 1: 0-1800 (1800 px) [header]",
		"Part 2: 1800-4200 (2400 px) [oversized]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePlan_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writePlan(&buf, testPlan(), "json"); err != nil {
		t.Fatal(err)
	}
	var got htmlshot.PagePlan
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got.Segments) != 2 || !got.Segments[0].IncludesHeader {
		t.Errorf("decoded plan = %+v", got)
	}
}

func TestWritePlan_UnknownFormat(t *testing.T) {
	if err := writePlan(&bytes.Buffer{}, testPlan(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestTarget(t *testing.T) {
	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{nil, "", true},
		{[]string{"report.html"}, "report.html", false},
		{[]string{"a.html", "b.html"}, "", true},
	}
	for _, tt := range tests {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		if err := fs.Parse(tt.args); err != nil {
			t.Fatal(err)
		}
		got, err := target(fs)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("target(%v) = %q, %v", tt.args, got, err)
		}
	}
}

func TestIsURL(t *testing.T) {
	for in, want := range map[string]bool{
		"https://example.com/r": true,
		"http://localhost:8080": true,
		"file:///tmp/r.html":    true,
		"report.html":           false,
		"/tmp/http.html":        false,
	} {
		if got := isURL(in); got != want {
			t.Errorf("isURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCommonFlags_Load(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var c commonFlags
	c.register(fs)
	if err := fs.Parse([]string{"-o", "out", "-topic", "daily", "-scale", "2", "-engine", "rod"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := c.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Output.Dir != "out" || cfg.Capture.Topic != "daily" || cfg.Capture.Scale != 2 || cfg.Browser.Engine != "rod" {
		t.Errorf("config = %+v", cfg)
	}

	c.engine = "webkit"
	if _, err := c.load(); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestWriteStitched(t *testing.T) {
	images := []*htmlshot.Image{
		htmlshot.NewImage("p1.png", 1, htmlshot.Segment{}, solidPNG(t, 4, 3)),
		htmlshot.NewImage("p2.png", 2, htmlshot.Segment{}, solidPNG(t, 4, 5)),
	}
	path := filepath.Join(t.TempDir(), "stitched.png")
	if err := writeStitched(path, images); err != nil {
		t.Fatalf("writeStitched: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 4 || cfg.Height != 8 {
		t.Errorf("stitched size = %dx%d, want 4x8", cfg.Width, cfg.Height)
	}
}

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: 200})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
