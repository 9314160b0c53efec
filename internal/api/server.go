package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/blopez6567/Clashsense/internal/analysis"
	"github.com/blopez6567/Clashsense/internal/bcf"
	"github.com/blopez6567/Clashsense/internal/common"
	"github.com/blopez6567/Clashsense/internal/ingest"
	"github.com/blopez6567/Clashsense/internal/xmltree"
)

// MaxBodyBytes caps the size of an uploaded clash report.
const MaxBodyBytes = 32 << 20

// MaxImageUploadBytes caps a multipart clash image upload, leaving room for
// the form framing around the image itself.
const MaxImageUploadBytes = analysis.MaxImageBytes + 1<<20

// Error codes returned in the "error" field of failed responses.
const (
	CodeParseError     = "PARSE_ERROR"
	CodeQuotaExceeded  = "QUOTA_EXCEEDED"
	CodeAnalysisError  = "ANALYSIS_ERROR"
	CodeNotConfigured  = "ANALYSIS_NOT_CONFIGURED"
	CodeNoClashes      = "NO_CLASHES"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
)

const rateLimitedResponse = "API rate limit exceeded. Please try again later."

// Analyzer produces resolution suggestions for a batch of clashes or a
// single clash screenshot.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
	AnalyzeImage(ctx context.Context, mediaType string, data []byte) (*analysis.ImageResult, error)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Server handles API requests. A nil analyzer disables /api/analyze.
type Server struct {
	pipeline   *ingest.Pipeline
	analyzer   Analyzer
	bcf        *bcf.Writer
	maxClashes int
}

// NewServer creates a Server.
func NewServer(pipeline *ingest.Pipeline, analyzer Analyzer, maxClashes int) *Server {
	if pipeline == nil {
		pipeline = ingest.NewPipeline(nil)
	}
	return &Server{
		pipeline:   pipeline,
		analyzer:   analyzer,
		bcf:        bcf.NewWriter(),
		maxClashes: maxClashes,
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ingestBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, CodeNotConfigured, common.ErrNoAnalyzer.Error())
		return
	}
	res, ok := s.ingestBody(w, r)
	if !ok {
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), analysis.BuildRequest(res.ProjectName, res.Records, s.maxClashes))
	if err != nil {
		writeAnalysisError(w, res.ProjectName, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) analyzeImage(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, CodeNotConfigured, common.ErrNoAnalyzer.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImageUploadBytes)
	if err := r.ParseMultipartForm(MaxImageUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeInvalidRequest, "clash image is too large")
			return
		}
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "No image file provided")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("Failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "No image file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "failed to read clash image")
		return
	}

	result, err := s.analyzer.AnalyzeImage(r.Context(), header.Header.Get("Content-Type"), data)
	if err != nil {
		writeAnalysisError(w, header.Filename, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeAnalysisError maps an analyzer failure to its response. subject
// names the project or file in the log.
func writeAnalysisError(w http.ResponseWriter, subject string, err error) {
	switch {
	case errors.Is(err, common.ErrNoClashes):
		writeError(w, http.StatusBadRequest, CodeNoClashes, err.Error())
	case errors.Is(err, common.ErrUnsupportedImage):
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	case errors.Is(err, common.ErrRateLimit):
		writeError(w, http.StatusTooManyRequests, CodeQuotaExceeded, rateLimitedResponse)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
	default:
		slog.Error("Clash analysis failed", "subject", subject, "error", err)
		writeError(w, http.StatusBadGateway, CodeAnalysisError, err.Error())
	}
}

func (s *Server) exportBCF(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ingestBody(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.bcf.Write(&buf, res.ProjectName, res.Records); err != nil {
		slog.Error("BCF export failed", "project", res.ProjectName, "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to build BCF archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": bcf.FileName(res.ProjectName)}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("Failed to write BCF response", "error", err)
	}
}

// ingestBody runs the pipeline on the request body, writing the error
// response itself when it fails.
func (s *Server) ingestBody(w http.ResponseWriter, r *http.Request) (*ingest.Result, bool) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer body.Close()

	res, err := s.pipeline.IngestReader(r.Context(), body)
	if err == nil {
		return res, true
	}

	var parseErr *xmltree.ParseError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &parseErr):
		writeError(w, http.StatusBadRequest, CodeParseError, parseErr.Error())
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, CodeInvalidRequest, "clash report is too large")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
	default:
		slog.Error("Ingest failed", "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternalError, err.Error())
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
