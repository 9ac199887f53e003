// Package server exposes the analysis engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/crimson-sun/attune/internal/engine/fusion"
	"github.com/crimson-sun/attune/internal/engine/taxonomy"
	"github.com/crimson-sun/attune/internal/model"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	maxBodyBytes        = 8 << 20 // frames may carry an encoded image
)

// Processor analyzes and records one request.
type Processor interface {
	Process(ctx context.Context, req model.Request) (model.Analysis, error)
}

// Advisor exposes the stateless fusion and recommendation steps.
type Advisor interface {
	Fuse(text, face model.Estimate) (model.Estimate, fusion.Rule)
	Recommend(label model.Emotion, confidence float64) model.Recommendation
}

// History answers recent-analysis queries.
type History interface {
	Recent(ctx context.Context, n int) ([]model.Analysis, error)
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables GET /history.
func WithHistory(h History) Option {
	return func(s *Server) { s.history = h }
}

// Server routes HTTP requests to the engine.
type Server struct {
	proc    Processor
	advisor Advisor
	history History
	mux     *http.ServeMux
}

// New creates a Server.
func New(proc Processor, advisor Advisor, opts ...Option) *Server {
	s := &Server{proc: proc, advisor: advisor, mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("POST /analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /fuse", s.handleFuse)
	s.mux.HandleFunc("POST /recommend", s.handleRecommend)
	s.mux.HandleFunc("GET /history", s.handleHistory)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return <-errCh
}

type analyzeRequest struct {
	Text    string       `json:"text"`
	UseFace bool         `json:"use_face"`
	Face    *model.Frame `json:"face"`
}

type analyzeResponse struct {
	Success             bool        `json:"success"`
	ID                  string      `json:"id"`
	TextEmotion         string      `json:"text_emotion"`
	TextConfidence      float64     `json:"text_confidence"`
	FaceEmotion         string      `json:"face_emotion"`
	FaceConfidence      float64     `json:"face_confidence"`
	FinalEmotion        string      `json:"final_emotion"`
	FinalConfidence     float64     `json:"final_confidence"`
	RecommendationLevel model.Level `json:"recommendation_level"`
	Tasks               []string    `json:"tasks"`
	UsedFace            bool        `json:"used_face"`
	FaceAnalysisNote    string      `json:"face_analysis_note"`
	FusionRule          string      `json:"fusion_rule"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}

	a, err := s.proc.Process(r.Context(), model.Request{
		Text:    strings.TrimSpace(req.Text),
		UseFace: req.UseFace,
		Face:    req.Face,
	})
	if err != nil {
		slog.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Analysis failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toAnalyzeResponse(a))
}

func toAnalyzeResponse(a model.Analysis) analyzeResponse {
	text, face := orNoSignal(a.Text), orNoSignal(a.Face)
	return analyzeResponse{
		Success:             true,
		ID:                  a.ID,
		TextEmotion:         string(text.Label),
		TextConfidence:      round3(text.Confidence),
		FaceEmotion:         string(face.Label),
		FaceConfidence:      round3(face.Confidence),
		FinalEmotion:        string(a.Recommendation.Emotion),
		FinalConfidence:     round3(a.Recommendation.Confidence),
		RecommendationLevel: a.Recommendation.Level,
		Tasks:               a.Recommendation.Tasks,
		UsedFace:            a.UsedFace,
		FaceAnalysisNote:    a.FaceNote,
		FusionRule:          a.Rule,
	}
}

type fuseRequest struct {
	Text model.Estimate `json:"text"`
	Face model.Estimate `json:"face"`
}

type fuseResponse struct {
	Success         bool    `json:"success"`
	FinalEmotion    string  `json:"final_emotion"`
	FinalConfidence float64 `json:"final_confidence"`
	FusionRule      string  `json:"fusion_rule"`
}

func (s *Server) handleFuse(w http.ResponseWriter, r *http.Request) {
	var req fuseRequest
	if !decode(w, r, &req) {
		return
	}
	fused, rule := s.advisor.Fuse(normalize(req.Text), normalize(req.Face))
	writeJSON(w, http.StatusOK, fuseResponse{
		Success:         true,
		FinalEmotion:    string(fused.Label),
		FinalConfidence: round3(fused.Confidence),
		FusionRule:      string(rule),
	})
}

type recommendRequest struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

type recommendResponse struct {
	Success             bool        `json:"success"`
	Emotion             string      `json:"emotion"`
	Confidence          float64     `json:"confidence"`
	RecommendationLevel model.Level `json:"recommendation_level"`
	Tasks               []string    `json:"tasks"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !decode(w, r, &req) {
		return
	}
	in := normalize(model.Estimate{Label: model.Emotion(req.Emotion), Confidence: req.Confidence})
	rec := s.advisor.Recommend(in.Label, in.Confidence)
	writeJSON(w, http.StatusOK, recommendResponse{
		Success:             true,
		Emotion:             string(rec.Emotion),
		Confidence:          round3(rec.Confidence),
		RecommendationLevel: rec.Level,
		Tasks:               rec.Tasks,
	})
}

type historyResponse struct {
	Success  bool             `json:"success"`
	Analyses []model.Analysis `json:"analyses"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	analyses, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "History query failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Success: true, Analyses: analyses})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// decode reads a JSON body into dst, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// normalize folds a client supplied label into the final taxonomy, case
// insensitively, and clamps its confidence. Unknown labels become neutral.
func normalize(e model.Estimate) model.Estimate {
	e.Label = taxonomy.MapToFinal(string(e.Label), taxonomy.Identity)
	e.Confidence = model.ClampConfidence(e.Confidence)
	return e
}

func orNoSignal(e model.Estimate) model.Estimate {
	if e.Label == "" {
		return model.NoSignal
	}
	return e
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
