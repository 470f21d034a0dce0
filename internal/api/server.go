// Package api provides the HTTP shell around the processing pipeline:
// a single /api/process entry point and a health probe. All domain
// behaviour lives in internal/ms; the handlers only decode requests,
// validate the step name, and encode results.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/metabolite.report/internal/httputil"
	"github.com/banshee-data/metabolite.report/internal/monitoring"
	"github.com/banshee-data/metabolite.report/internal/ms"
	"github.com/banshee-data/metabolite.report/internal/ms/pipeline"
	"github.com/banshee-data/metabolite.report/internal/version"
)

// ANSI escape codes for request-log colouring.
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// Server binds the HTTP handlers to a processor.
type Server struct {
	processor *pipeline.Processor
}

// NewServer wraps the given processor. A nil processor gets the
// default construction (capability-probed picker).
func NewServer(processor *pipeline.Processor) *Server {
	if processor == nil {
		processor = pipeline.NewProcessor(nil)
	}
	return &Server{processor: processor}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/process", s.handleProcess)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// CORSMiddleware allows the browser client to call the service
// cross-origin and answers preflight requests.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// processRequest is the wire shape of a processing call.
type processRequest struct {
	Step       string          `json:"step"`
	Data       []*ms.Sample    `json:"data"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	// Unknown steps are rejected here, before any processing; the
	// pipeline itself only sees the closed Step set.
	step, err := pipeline.ParseStep(req.Step)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	params, err := pipeline.DecodeParams(step, req.Parameters)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	result, err := s.processor.Process(r.Context(), req.Data, params)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	path := s.processor.AlgorithmPath()
	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":        "healthy",
		"service":       "ms-processing",
		"version":       version.Version,
		"algorithmPath": path,
		"fullFidelity":  path == ms.PathFullFidelity,
	})
}
