package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/improve"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

// maxBodyBytes bounds request bodies; documents may embed a data URL photo.
const maxBodyBytes = 5 << 20

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	db            DBClient
	rateLimiter   *ratelimit.Limiter
	jwtService    *JWTService
	userService   *UserService
	authHandler   *AuthHandler
	improver      improve.Service
	htmlExporter  export.Exporter
	printExporter export.Exporter
	pdfExporter   export.Exporter
	closers       []func() error
}

// Config holds server configuration
type Config struct {
	Port            int
	DatabaseURL     string
	APIKey          string // Gemini key for /improve
	ImproveEndpoint string // remote improvement service; wins over APIKey
	ChromePath      string // Chrome binary for PDF export; empty uses the default lookup
}

// Deps are the collaborators of a Server. Nil optional services disable their endpoints.
type Deps struct {
	DB            DBClient
	JWT           *JWTService
	Passwords     *config.PasswordConfig
	RateLimiter   *ratelimit.Limiter
	Improver      improve.Service
	PrintExporter export.Exporter
	PDFExporter   export.Exporter
}

// New creates a new server instance connected to PostgreSQL.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	deps := Deps{
		DB:          database,
		JWT:         NewJWTService(jwtConfig),
		Passwords:   passwordConfig,
		RateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
	}

	var closers []func() error
	switch {
	case cfg.ImproveEndpoint != "":
		deps.Improver = improve.NewRemoteImprover(cfg.ImproveEndpoint)
		log.Printf("[server] field improvement via %s", cfg.ImproveEndpoint)
	case cfg.APIKey != "":
		client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		closers = append(closers, client.Close)
		deps.Improver = improve.NewLLMImprover(client)
		log.Printf("[server] field improvement via Gemini")
	default:
		log.Printf("[server] field improvement disabled: no IMPROVE_ENDPOINT or GEMINI_API_KEY")
	}

	chrome := export.NewChrome(cfg.ChromePath)
	deps.PrintExporter = &export.PrintExporter{Printer: chrome}
	deps.PDFExporter = &export.PDFExporter{Rasterizer: chrome}

	s := NewWithDeps(cfg.Port, deps)
	s.closers = closers
	return s, nil
}

// NewWithDeps creates a server from already-built collaborators.
func NewWithDeps(port int, deps Deps) *Server {
	s := &Server{
		db:            deps.DB,
		rateLimiter:   deps.RateLimiter,
		jwtService:    deps.JWT,
		improver:      deps.Improver,
		htmlExporter:  &export.PrintExporter{},
		printExporter: deps.PrintExporter,
		pdfExporter:   deps.PDFExporter,
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	s.userService = NewUserService(deps.DB, deps.Passwords)
	s.authHandler = NewAuthHandler(s.userService, deps.JWT)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // PDF export drives a headless browser
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	protected := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	auth := func(h http.HandlerFunc) http.Handler { return protected(h) }

	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("PUT /auth/password", auth(s.handleUpdatePassword))

	// Profile of the authenticated user
	mux.Handle("GET /users/me", auth(s.handleGetMe))
	mux.Handle("PATCH /users/me", auth(s.handleUpdateMe))
	mux.Handle("DELETE /users/me", auth(s.handleDeleteMe))

	// Stored resumes
	mux.Handle("GET /resumes", auth(s.handleListResumes))
	mux.Handle("POST /resumes", auth(s.handleCreateResume))
	mux.Handle("GET /resumes/{id}", auth(s.handleGetResume))
	mux.Handle("PATCH /resumes/{id}", auth(s.handleUpdateResume))
	mux.Handle("DELETE /resumes/{id}", auth(s.handleDeleteResume))
	mux.Handle("GET /resumes/{id}/preview", auth(s.handleResumePreview))

	// Stateless tooling
	mux.HandleFunc("POST /resumes/parse", s.handleParse)
	mux.HandleFunc("GET /preview", s.handlePreviewQuery)
	mux.HandleFunc("POST /preview", s.handlePreview)
	mux.HandleFunc("POST /improve", s.handleImprove)
	mux.HandleFunc("POST /export/print", s.handleExportPrint)
	mux.HandleFunc("POST /export/pdf", s.handleExportPDF)

	return s.withRateLimit(s.withLogging(s.withCORS(withBodyLimit(mux))))
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.release()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("[server] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.release()
	log.Println("[server] stopped")
	return nil
}

func (s *Server) release() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			log.Printf("[server] close failed: %v", err)
		}
	}
	if s.db != nil {
		s.db.Close()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Page-Count, Retry-After")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func withBodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		log.Printf("[server] %s %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(rec, r)
		log.Printf("[server] %s %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeError(w, status, message)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleRegister handles user registration requests.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.authHandler.Register(w, r)
}

// handleLogin handles user login requests.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.authHandler.Login(w, r)
}

// handleUpdatePassword handles password update requests.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	s.authHandler.UpdatePasswordWithUserID(w, r, userID)
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := max(1, int(info.RetryAfter.Seconds()))
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d", info.Limit, info.Remaining)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
