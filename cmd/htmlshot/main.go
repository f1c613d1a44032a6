// htmlshot renders the report container of an HTML page into PNG images.
//
// Usage:
//
//	htmlshot whole    [options] <file.html | URL>
//	htmlshot segments [options] <file.html | URL>
//	htmlshot plan     [options] <file.html | URL>
//	htmlshot serve    [options]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	htmlshot "github.com/porticus-lab/go-html-shot"
	"github.com/porticus-lab/go-html-shot/internal/config"
	"github.com/porticus-lab/go-html-shot/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "whole":
		err = runCapture(ctx, htmlshot.ModeWhole, os.Args[2:])
	case "segments":
		err = runCapture(ctx, htmlshot.ModeSegments, os.Args[2:])
	case "plan":
		err = runPlan(ctx, os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `htmlshot - render report pages into PNG images

Usage:
  htmlshot whole    [options] <file.html | URL>
  htmlshot segments [options] <file.html | URL>
  htmlshot plan     [options] <file.html | URL>
  htmlshot serve    [options]

Commands:
  whole     Capture the report container as one image
  segments  Capture the report container as height-bounded parts
  plan      Print the measured layout and its segmentation
  serve     Expose the captures over HTTP

Common options:
  -config <file>      YAML configuration file
  -o <dir>            Output directory (default: config or ".")
  -topic <name>       Topic embedded in file names
  -scale <n>          Device pixel ratio (default 1.5)
  -max-height <px>    Maximum part height in device pixels (default 5000)
  -engine <name>      chromedp or rod
  -no-sandbox         Disable the Chrome sandbox
  -log-level <level>  debug, info, warn, error

Segments options:
  -p <parts>          Parts to save, e.g. "1", "1-3", "1,4" (default: all)
  -stitch <file>      Also write the parts stacked back into one PNG

Plan options:
  -f <format>         Output format: text, json (default: text)

Serve options:
  -addr <addr>        Listen address (default: config or ":8080")

Examples:
  htmlshot whole report.html
  htmlshot segments -o out -p 1-2 https://example.com/report
  htmlshot plan -f json report.html
  htmlshot serve -config htmlshot.yaml
`)
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	configPath string
	outDir     string
	topic      string
	scale      float64
	maxHeight  float64
	engine     string
	noSandbox  bool
	logLevel   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.outDir, "o", "", "output directory")
	fs.StringVar(&c.topic, "topic", "", "topic embedded in file names")
	fs.Float64Var(&c.scale, "scale", 0, "device pixel ratio")
	fs.Float64Var(&c.maxHeight, "max-height", 0, "maximum part height in device pixels")
	fs.StringVar(&c.engine, "engine", "", "browser engine: chromedp or rod")
	fs.BoolVar(&c.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
	fs.StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

// load builds the configuration from the file and the flag overrides.
func (c *commonFlags) load() (*config.Config, error) {
	cfg := config.Default()
	if c.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(c.configPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if c.outDir != "" {
		cfg.Output.Dir = c.outDir
	}
	if c.topic != "" {
		cfg.Capture.Topic = c.topic
	}
	if c.scale > 0 {
		cfg.Capture.Scale = c.scale
	}
	if c.maxHeight > 0 {
		cfg.Capture.MaxImageHeight = c.maxHeight
	}
	if c.engine != "" {
		cfg.Browser.Engine = c.engine
	}
	if c.noSandbox {
		cfg.Browser.NoSandbox = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *commonFlags) logger() *slog.Logger {
	var level slog.Level
	switch c.logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newCapturer(cfg *config.Config, logger *slog.Logger) (*htmlshot.Capturer, error) {
	opts := append(cfg.Options(), htmlshot.WithLogger(logger))
	c, err := htmlshot.NewCapturer(opts...)
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return c, nil
}

// target returns the single positional argument of a capture command.
func target(fs *flag.FlagSet) (string, error) {
	switch fs.NArg() {
	case 0:
		return "", errors.New("no input file or URL specified")
	case 1:
		return fs.Arg(0), nil
	}
	return "", fmt.Errorf("expected one input, got %d", fs.NArg())
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "file://")
}

// runCapture implements the "whole" and "segments" commands.
func runCapture(ctx context.Context, mode htmlshot.Mode, args []string) error {
	fs := flag.NewFlagSet(mode.String(), flag.ContinueOnError)
	var (
		common     commonFlags
		parts      string
		stitchPath string
	)
	common.register(fs)
	if mode == htmlshot.ModeSegments {
		fs.StringVar(&parts, "p", "", "parts to save")
		fs.StringVar(&stitchPath, "stitch", "", "write the parts stacked into one PNG")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	input, err := target(fs)
	if err != nil {
		return err
	}
	cfg, err := common.load()
	if err != nil {
		return err
	}
	logger := common.logger()

	c, err := newCapturer(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	cc := cfg.CaptureConfig()
	cc.Parts = parts
	cc.Progress = func(p htmlshot.Progress) {
		if label := p.Label(); label != "" {
			fmt.Fprintln(os.Stderr, label)
		}
	}

	var res *htmlshot.Result
	if isURL(input) {
		res, err = c.CaptureURL(ctx, input, mode, &cc)
	} else {
		res, err = c.CaptureFile(ctx, input, mode, &cc)
	}
	if err != nil {
		var ce *htmlshot.CaptureError
		if errors.As(err, &ce) && len(ce.Delivered) > 0 {
			for _, f := range ce.Delivered {
				fmt.Println(f)
			}
		}
		return err
	}

	for _, f := range res.Files {
		fmt.Println(f)
	}

	if stitchPath != "" {
		if err := writeStitched(stitchPath, res.Images); err != nil {
			return err
		}
		fmt.Println(stitchPath)
	}
	return nil
}

func writeStitched(path string, images []*htmlshot.Image) error {
	img, err := htmlshot.Stitch(images)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// runPlan implements the "plan" command.
func runPlan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	var (
		common commonFlags
		format string
	)
	common.register(fs)
	fs.StringVar(&format, "f", "text", "output format: text, json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input, err := target(fs)
	if err != nil {
		return err
	}
	cfg, err := common.load()
	if err != nil {
		return err
	}

	c, err := newCapturer(cfg, common.logger())
	if err != nil {
		return err
	}
	defer c.Close()

	cc := cfg.CaptureConfig()
	var plan *htmlshot.PagePlan
	if isURL(input) {
		plan, err = c.PlanURL(ctx, input, &cc)
	} else {
		plan, err = c.PlanFile(ctx, input, &cc)
	}
	if err != nil {
		return err
	}
	return writePlan(os.Stdout, plan, format)
}

func writePlan(w io.Writer, plan *htmlshot.PagePlan, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plan); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	case "text", "":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	fmt.Fprintf(w, "Container: %.0f x %.0f px\n", plan.Layout.Width, plan.Layout.Height)
	fmt.Fprintf(w, "Elements:  %d\n", len(plan.Layout.Elements))
	fmt.Fprintf(w, "Max part:  %.0f px\n", plan.MaxHeight)
	fmt.Fprintf(w, "Parts:     %d\n", len(plan.Segments))
	if len(plan.Segments) > 0 {
		fmt.Fprintln(w)
		for i, s := range plan.Segments {
			fmt.Fprintf(w, "  Part %d: %.0f-%.0f (%.0f px)", i+1, s.Start, s.End, s.Span())
			if s.IncludesHeader {
				fmt.Fprint(w, " [header]")
			}
			if s.Span() > plan.MaxHeight {
				fmt.Fprint(w, " [oversized]")
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

// runServe implements the "serve" command.
func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var (
		common commonFlags
		addr   string
	)
	common.register(fs)
	fs.StringVar(&addr, "addr", "", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.load()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	logger := common.logger()

	c, err := newCapturer(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(c, cfg.CaptureConfig(), cfg.Server.InlineImages, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("htmlshot: listening", "addr", cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("htmlshot: shutting down")
	return srv.Shutdown(shutdownCtx)
}
