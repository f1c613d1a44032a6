package htmlshot_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	htmlshot "github.com/porticus-lab/go-html-shot"
)

// chromeAvailable reports whether a Chrome/Chromium executable is in PATH.
func chromeAvailable() bool {
	for _, name := range []string{
		"chromium-browser", "chromium", "google-chrome",
		"google-chrome-stable", "chrome",
	} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func skipIfNoChrome(t *testing.T) {
	t.Helper()
	if !chromeAvailable() {
		t.Skip("skipping: Chrome/Chromium not found in PATH")
	}
}

func newTestCapturer(t *testing.T, opts ...htmlshot.Option) *htmlshot.Capturer {
	t.Helper()
	skipIfNoChrome(t)
	c, err := htmlshot.NewCapturer(append([]htmlshot.Option{htmlshot.WithNoSandbox()}, opts...)...)
	if err != nil {
		t.Fatalf("NewCapturer: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// isPNG checks whether data starts with the PNG signature.
func isPNG(data []byte) bool {
	return len(data) > 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n"
}

// reportHTML builds a report page in the stock template with the given
// number of keyword groups, each holding items of itemHeight pixels.
func reportHTML(groups, items, itemHeight int) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html><head><style>
  body { margin: 0; font-family: sans-serif; background: #fafafa; }
  .container { width: 600px; margin: 0 auto; background: white; }
  .header { height: 120px; background: #4f46e5; color: white; }
  .save-buttons { position: absolute; top: 10px; right: 10px; }
  .word-header { height: 40px; }
  .footer { height: 60px; }
</style></head><body>
<div class="container">
  <div class="header"><h1>Daily hot topics</h1>
    <div class="save-buttons"><button>Save</button><button>Save parts</button></div>
  </div>
  <div class="error-section">2 sources failed</div>
`)
	for g := 0; g < groups; g++ {
		fmt.Fprintf(&b, `  <div class="word-group"><div class="word-header">keyword %d</div>`, g+1)
		for i := 0; i < items; i++ {
			fmt.Fprintf(&b, `<div class="news-item" style="height:%dpx">item %d.%d</div>`, itemHeight, g+1, i+1)
		}
		b.WriteString("</div>\n")
	}
	b.WriteString(`  <div class="new-section">New since last run</div>
  <div class="footer">generated by the crawler</div>
</div></body></html>`)
	return b.String()
}

func TestCaptureHTML_Whole(t *testing.T) {
	c := newTestCapturer(t)
	sink := &htmlshot.MemorySink{}

	res, err := c.CaptureHTML(context.Background(), reportHTML(2, 3, 80), htmlshot.ModeWhole,
		&htmlshot.CaptureConfig{Topic: "daily", Sink: sink})
	if err != nil {
		t.Fatalf("CaptureHTML: %v", err)
	}
	if res.Len() != 1 || !isPNG(res.Images[0].Bytes()) {
		t.Fatal("output is not a single PNG")
	}
	if !strings.HasPrefix(res.Files[0], "Report_daily_") || strings.Contains(res.Files[0], "_part") {
		t.Errorf("file name = %q", res.Files[0])
	}
	w, _, err := res.Images[0].Size()
	if err != nil {
		t.Fatal(err)
	}
	// 600 CSS pixels at the default 1.5 scale
	if w < 899 || w > 901 {
		t.Errorf("image width = %d, want 900", w)
	}
}

func TestCaptureHTML_Segments(t *testing.T) {
	for _, engine := range []htmlshot.Engine{htmlshot.EngineChromedp, htmlshot.EngineRod} {
		t.Run(engine.String(), func(t *testing.T) {
			c := newTestCapturer(t, htmlshot.WithEngine(engine))

			cc := &htmlshot.CaptureConfig{
				Topic:          "daily",
				Scale:          1,
				MaxImageHeight: 1000,
				Sink:           &htmlshot.MemorySink{},
			}
			res, err := c.CaptureHTML(context.Background(), reportHTML(4, 5, 100), htmlshot.ModeSegments, cc)
			if err != nil {
				t.Fatalf("CaptureHTML: %v", err)
			}
			if res.Len() < 2 {
				t.Fatalf("got %d parts, want at least 2", res.Len())
			}
			for i, img := range res.Images {
				if !isPNG(img.Bytes()) {
					t.Fatalf("part %d is not a PNG", i+1)
				}
				if !strings.HasSuffix(img.Name, fmt.Sprintf("_part%d.png", i+1)) {
					t.Errorf("part %d name = %q", i+1, img.Name)
				}
				_, h, err := img.Size()
				if err != nil {
					t.Fatal(err)
				}
				if h > 1000 {
					t.Errorf("part %d is %dpx tall, limit 1000", i+1, h)
				}
			}
			if cov, want := res.Plan.Coverage(), res.Plan.Layout.Height; math.Abs(cov-want) > 0.01 {
				t.Errorf("coverage = %v, want container height %v", cov, want)
			}
		})
	}
}

func TestPlanHTML(t *testing.T) {
	c := newTestCapturer(t)

	plan, err := c.PlanHTML(context.Background(), reportHTML(3, 4, 100), &htmlshot.CaptureConfig{Scale: 1, MaxImageHeight: 800})
	if err != nil {
		t.Fatalf("PlanHTML: %v", err)
	}
	els := plan.Layout.Elements
	if els[0].Kind != htmlshot.KindHeader || els[len(els)-1].Kind != htmlshot.KindFooter {
		t.Errorf("layout not framed by header and footer: %+v", els)
	}
	if !plan.Segments[0].IncludesHeader {
		t.Error("first segment does not include the header")
	}
}

func TestPlanHTML_HiddenItemSkipped(t *testing.T) {
	c := newTestCapturer(t)

	html := strings.Replace(reportHTML(2, 3, 100),
		`<div class="news-item"`,
		`<div class="news-item" style="display:none">hidden</div><div class="news-item"`, 1)
	plan, err := c.PlanHTML(context.Background(), html, &htmlshot.CaptureConfig{Scale: 1, MaxImageHeight: 300})
	if err != nil {
		t.Fatalf("PlanHTML: %v", err)
	}
	items := 0
	for _, el := range plan.Layout.Elements {
		if el.Kind == htmlshot.KindItem {
			items++
		}
		if el.Top < 0 {
			t.Errorf("%s measured above the container at %v", el.Kind, el.Top)
		}
	}
	if items != 6 {
		t.Errorf("measured %d items, want 6 visible ones", items)
	}
	for i, s := range plan.Segments {
		if s.Span() <= 0 {
			t.Errorf("segment %d has span %v", i, s.Span())
		}
	}
}

func TestPlanHTML_NoContainer(t *testing.T) {
	c := newTestCapturer(t)

	if _, err := c.PlanHTML(context.Background(), "<p>not a report</p>", nil); err == nil {
		t.Fatal("expected error for a page without report container")
	}
}

func TestCaptureFile_DirSink(t *testing.T) {
	c := newTestCapturer(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.html")
	if err := os.WriteFile(path, []byte(reportHTML(1, 2, 50)), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out")
	res, err := c.CaptureFile(context.Background(), path, htmlshot.ModeWhole,
		&htmlshot.CaptureConfig{Sink: htmlshot.DirSink{Dir: out}})
	if err != nil {
		t.Fatalf("CaptureFile: %v", err)
	}
	data, err := os.ReadFile(res.Files[0])
	if err != nil {
		t.Fatal(err)
	}
	if !isPNG(data) {
		t.Fatal("written file is not a valid PNG")
	}
}

func TestCapturer_UsedAfterClose(t *testing.T) {
	skipIfNoChrome(t)

	c, err := htmlshot.NewCapturer(htmlshot.WithNoSandbox())
	if err != nil {
		t.Fatal(err)
	}
	c.Close()

	_, err = c.CaptureHTML(context.Background(), "<p>test</p>", htmlshot.ModeWhole, nil)
	if !errors.Is(err, htmlshot.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestCaptureHTML_PackageLevel(t *testing.T) {
	skipIfNoChrome(t)

	res, err := htmlshot.CaptureHTML(
		context.Background(),
		reportHTML(1, 1, 40),
		htmlshot.ModeWhole,
		&htmlshot.CaptureConfig{Sink: htmlshot.DiscardSink{}},
		htmlshot.WithNoSandbox(),
	)
	if err != nil {
		t.Fatalf("CaptureHTML: %v", err)
	}
	if !isPNG(res.Images[0].Bytes()) {
		t.Fatal("output is not a valid PNG")
	}
}
