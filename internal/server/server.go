package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/RyanBlaney/voice-biomarker/internal/analysis"
	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
)

// Config contains HTTP server settings
type Config struct {
	Address        string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Engine         *analysis.AnalysisEngine
	Logger         logging.Logger
}

// Server exposes the analysis engine over HTTP
type Server struct {
	engine     *analysis.AnalysisEngine
	httpServer *http.Server
	logger     logging.Logger
}

// New creates the server and wires its routes
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	s := &Server{
		engine: config.Engine,
		logger: logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/analyze", s.handleAnalyze).Methods(http.MethodPost)
	router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	readTimeout := config.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := config.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         config.Address,
		Handler:      corsHandler(router),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return s
}

// Handler returns the full HTTP handler, for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving requests until Shutdown
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", logging.Fields{
		"address": s.httpServer.Addr,
	})
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
