// Package server exposes the whole-page and segmented captures over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	htmlshot "github.com/porticus-lab/go-html-shot"
)

// maxBodyBytes bounds request bodies; inline HTML reports can be large.
const maxBodyBytes = 16 << 20

// Capturer is the part of *htmlshot.Capturer the server needs.
type Capturer interface {
	CaptureURL(ctx context.Context, rawURL string, mode htmlshot.Mode, cc *htmlshot.CaptureConfig) (*htmlshot.Result, error)
	CaptureHTML(ctx context.Context, html string, mode htmlshot.Mode, cc *htmlshot.CaptureConfig) (*htmlshot.Result, error)
	PlanURL(ctx context.Context, rawURL string, cc *htmlshot.CaptureConfig) (*htmlshot.PagePlan, error)
	PlanHTML(ctx context.Context, html string, cc *htmlshot.CaptureConfig) (*htmlshot.PagePlan, error)
}

// Server serves capture requests against a shared Capturer.
type Server struct {
	capturer Capturer
	base     htmlshot.CaptureConfig
	inline   bool
	logger   *slog.Logger
}

// New creates a Server. base supplies the defaults of every request; when
// inline is true, responses embed the images as data URLs unless the
// request says otherwise.
func New(c Capturer, base htmlshot.CaptureConfig, inline bool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{capturer: c, base: base, inline: inline, logger: logger}
}

// Handler returns the HTTP routes:
//
//	GET  /health
//	POST /capture/whole
//	POST /capture/segments
//	POST /plan
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/capture/{mode}", s.handleCapture)
	r.Post("/plan", s.handlePlan)
	return r
}

// CaptureRequest is the body of POST /capture/{mode} and POST /plan.
// Exactly one of URL and HTML must be set.
type CaptureRequest struct {
	URL            string  `json:"url"`
	HTML           string  `json:"html"`
	Topic          string  `json:"topic"`
	Parts          string  `json:"parts"`
	Scale          float64 `json:"scale"`
	MaxImageHeight float64 `json:"max_image_height"`
	Inline         *bool   `json:"inline"`
}

// ImageInfo describes one rendered image in a response.
type ImageInfo struct {
	Name    string  `json:"name"`
	Part    int     `json:"part"`
	Bytes   int     `json:"bytes"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	DataURL string  `json:"data_url,omitempty"`
}

// CaptureResponse is the body returned by a successful capture.
type CaptureResponse struct {
	RunID    string             `json:"run_id"`
	Mode     string             `json:"mode"`
	Segments []htmlshot.Segment `json:"segments"`
	Images   []ImageInfo        `json:"images"`
	Files    []string           `json:"files"`
}

// ErrorResponse is the body returned when a request fails.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Phase     string   `json:"phase,omitempty"`
	Delivered []string `json:"delivered,omitempty"`
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	mode, ok := htmlshot.ParseMode(chi.URLParam(r, "mode"))
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown capture mode"})
		return
	}
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	cc := s.captureConfig(req)
	reqID := middleware.GetReqID(r.Context())
	cc.Progress = func(p htmlshot.Progress) {
		s.logger.Debug("server: progress", "request_id", reqID, "run_id", p.RunID, "status", p.Status, "part", p.Part, "total", p.Total)
	}

	var (
		res *htmlshot.Result
		err error
	)
	if req.URL != "" {
		res, err = s.capturer.CaptureURL(r.Context(), req.URL, mode, &cc)
	} else {
		res, err = s.capturer.CaptureHTML(r.Context(), req.HTML, mode, &cc)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	inline := s.inline
	if req.Inline != nil {
		inline = *req.Inline
	}
	resp := CaptureResponse{
		RunID:    res.RunID,
		Mode:     res.Mode.String(),
		Segments: res.Plan.Segments,
		Files:    res.Files,
	}
	for _, img := range res.Images {
		info := ImageInfo{
			Name:  img.Name,
			Part:  img.Part,
			Bytes: img.Len(),
			Start: img.Segment.Start,
			End:   img.Segment.End,
		}
		if inline {
			info.DataURL = img.DataURL()
		}
		resp.Images = append(resp.Images, info)
	}
	s.logger.Info("server: capture served", "request_id", reqID, "run_id", res.RunID, "mode", res.Mode, "images", len(resp.Images))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	cc := s.captureConfig(req)

	var (
		plan *htmlshot.PagePlan
		err  error
	)
	if req.URL != "" {
		plan, err = s.capturer.PlanURL(r.Context(), req.URL, &cc)
	} else {
		plan, err = s.capturer.PlanHTML(r.Context(), req.HTML, &cc)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (CaptureRequest, bool) {
	var req CaptureRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return req, false
	}
	if (req.URL == "") == (req.HTML == "") {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "exactly one of url and html is required"})
		return req, false
	}
	if req.URL != "" {
		if _, err := url.ParseRequestURI(req.URL); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid url"})
			return req, false
		}
	}
	return req, true
}

// captureConfig layers the request overrides on top of the server defaults.
func (s *Server) captureConfig(req CaptureRequest) htmlshot.CaptureConfig {
	cc := s.base
	if req.Topic != "" {
		cc.Topic = req.Topic
	}
	if req.Scale > 0 {
		cc.Scale = req.Scale
	}
	if req.MaxImageHeight > 0 {
		cc.MaxImageHeight = req.MaxImageHeight
	}
	cc.Parts = req.Parts
	return cc
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusBadGateway

	var ce *htmlshot.CaptureError
	if errors.As(err, &ce) {
		resp.Phase = string(ce.Phase)
		resp.Delivered = ce.Delivered
	}
	switch {
	case errors.Is(err, htmlshot.ErrInvalidParts):
		status = http.StatusBadRequest
	case errors.Is(err, htmlshot.ErrClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, htmlshot.ErrNoLayout), ce != nil && ce.Phase == htmlshot.PhaseMeasure:
		// The page loaded but is not a report.
		status = http.StatusUnprocessableEntity
	}
	s.logger.Warn("server: request failed", "status", status, "error", err)
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
