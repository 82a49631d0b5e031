package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/video-pii-analyzer/internal/application/analysis"
	domain "github.com/bryanwahyu/video-pii-analyzer/internal/domain/jobs"
	"github.com/bryanwahyu/video-pii-analyzer/internal/middleware"
)

type Router struct {
	svc          *analysis.Service
	maxUpload    int64
	maxTextBytes int
}

// Options tunes the request surface; zero values fall back to safe
// defaults.
type Options struct {
	MaxUploadBytes     int64
	MaxTextBytes       int
	RateLimitCapacity  int
	RateLimitPerSecond int
	HealthCheckers     map[string]middleware.HealthChecker
}

func NewRouter(svc *analysis.Service, opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 512 << 20
	}
	if opts.RateLimitCapacity <= 0 {
		opts.RateLimitCapacity = 30
	}
	if opts.RateLimitPerSecond <= 0 {
		opts.RateLimitPerSecond = 1
	}

	r := &Router{svc: svc, maxUpload: opts.MaxUploadBytes, maxTextBytes: opts.MaxTextBytes}
	mux := chi.NewRouter()

	// the original service allowed any origin
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(opts.RateLimitCapacity, opts.RateLimitPerSecond))

	mux.Get("/", r.handleIndex)
	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/analyze/video", r.wrap(r.handleAnalyzeVideo))
	mux.Post("/analyze/text", r.wrap(r.handleAnalyzeText))
	mux.Get("/jobs", r.wrap(r.handleListJobs))
	mux.Get("/jobs/{id}", r.wrap(r.handleGetJob))
	mux.Delete("/jobs/{id}", r.wrap(r.handleDeleteJob))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// statusError carries an HTTP status through the error path
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func badRequest(err error) error { return &statusError{code: http.StatusBadRequest, err: err} }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var se *statusError
			if errors.As(err, &se) {
				http.Error(w, se.Error(), se.code)
				return
			}
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "job not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// GET /
func (r *Router) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Video PII Analyzer API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /analyze/video": "Upload and analyze video for PII",
			"POST /analyze/text":  "Analyze text for PII",
			"GET /jobs/{job_id}":  "Get analysis results",
			"GET /jobs":           "List analysis jobs",
			"GET /health":         "Health check",
		},
	})
}

// POST /analyze/video
// multipart upload, field "file"; analysis runs in the background and
// the response carries the job id to poll.
func (r *Router) handleAnalyzeVideo(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)

	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest(fmt.Errorf("missing upload: %w", err))
	}
	defer file.Close()

	if err := middleware.ValidateUploadContentType(header.Header.Get("Content-Type")); err != nil {
		return badRequest(err)
	}
	filename := middleware.SanitizeString(header.Filename)
	if err := middleware.ValidateFilename(filename); err != nil {
		return badRequest(err)
	}

	id, err := r.svc.SubmitVideo(req.Context(), file, filename)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":           id,
		"status":           domain.StatusQueued,
		"message":          "Video uploaded successfully. Analysis started.",
		"check_status_url": fmt.Sprintf("/jobs/%s", id),
	})
}

// POST /analyze/text
func (r *Router) handleAnalyzeText(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest(err)
	}
	if err := middleware.ValidateTextSize(body.Text, r.maxTextBytes); err != nil {
		return badRequest(err)
	}

	report, summary := r.svc.AnalyzeText(req.Context(), body.Text)
	return writeJSON(w, http.StatusOK, map[string]any{
		"pii_detected": report,
		"summary":      summary,
	})
}

// GET /jobs/{id}
func (r *Router) handleGetJob(w http.ResponseWriter, req *http.Request) error {
	id := domain.JobID(chi.URLParam(req, "id"))
	job, err := r.svc.Jobs.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, job)
}

// GET /jobs?limit=50&offset=0
func (r *Router) handleListJobs(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(req.URL.Query().Get("offset"))
	limit = middleware.ValidateLimit(limit)
	offset = middleware.ValidateOffset(offset)

	list, total, err := r.svc.Jobs.List(req.Context(), limit, offset)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Job{}
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"jobs":   list,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// DELETE /jobs/{id}
func (r *Router) handleDeleteJob(w http.ResponseWriter, req *http.Request) error {
	id := domain.JobID(chi.URLParam(req, "id"))
	if err := r.svc.Jobs.Delete(req.Context(), id); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Job %s deleted successfully", id),
	})
}
