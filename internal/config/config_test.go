package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	htmlshot "github.com/porticus-lab/go-html-shot"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "htmlshot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
browser:
  engine: rod
  no_sandbox: true
  timeout: 90s
capture:
  topic: weekly
  scale: 2
  max_image_height: 4000
  settle_delay: 250ms
  selectors:
    container: "#report"
    item: ".entry"
output:
  dir: /tmp/reports
server:
  addr: 127.0.0.1:9000
  inline_images: true
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Browser.Engine != "rod" || !cfg.Browser.NoSandbox || cfg.Browser.Timeout != 90*time.Second {
		t.Errorf("browser = %+v", cfg.Browser)
	}
	if cfg.Capture.Topic != "weekly" || cfg.Capture.Scale != 2 || cfg.Capture.MaxImageHeight != 4000 {
		t.Errorf("capture = %+v", cfg.Capture)
	}
	if cfg.Capture.SettleDelay != 250*time.Millisecond {
		t.Errorf("settle delay = %v, want 250ms", cfg.Capture.SettleDelay)
	}
	if cfg.Capture.Selectors.Container != "#report" || cfg.Capture.Selectors.Item != ".entry" {
		t.Errorf("selectors = %+v", cfg.Capture.Selectors)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || !cfg.Server.InlineImages {
		t.Errorf("server = %+v", cfg.Server)
	}

	cc := cfg.CaptureConfig()
	sink, ok := cc.Sink.(htmlshot.DirSink)
	if !ok || sink.Dir != "/tmp/reports" {
		t.Errorf("sink = %#v, want DirSink on /tmp/reports", cc.Sink)
	}
	if len(cfg.Options()) != 3 {
		t.Errorf("got %d options, want engine, timeout and no-sandbox", len(cfg.Options()))
	}
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "capture:\n  topic: daily\n"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	d := Default()
	if cfg.Browser.Engine != d.Browser.Engine || cfg.Browser.Timeout != 60*time.Second {
		t.Errorf("browser = %+v, want defaults", cfg.Browser)
	}
	if cfg.Capture.Scale != 1.5 || cfg.Capture.MaxImageHeight != 5000 {
		t.Errorf("capture = %+v, want default scale and height", cfg.Capture)
	}
	if cfg.Output.Dir != "." || cfg.Server.Addr != ":8080" {
		t.Errorf("output/server = %+v/%+v", cfg.Output, cfg.Server)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := map[string]string{
		"engine": "browser:\n  engine: webkit\n",
		"scale":  "capture:\n  scale: 8\n",
		"yaml":   "capture: [unterminated\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFile(writeConfig(t, content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Errorf("LoadFile(missing) = %v, want not-exist error", err)
	}
}
