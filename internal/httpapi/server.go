// Package httpapi exposes translation to a mobile front end over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/valpere/voicetran/internal/language"
	"github.com/valpere/voicetran/internal/orchestrator"
	"github.com/valpere/voicetran/internal/session"
	"github.com/valpere/voicetran/internal/translator"
)

// maxTextLength bounds a single request; providers reject far smaller inputs
// anyway (MyMemory allows 500 bytes per query on the free tier).
const maxTextLength = 5000

type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	translator session.Translator
	history    session.HistoryRecorder
	providers  []translator.TranslationService
	logger     zerolog.Logger
	opts       Options
	echo       *echo.Echo
}

// NewServer wires routes. providers are reported by the health and
// languages endpoints in attempt order. history may be nil.
func NewServer(t session.Translator, history session.HistoryRecorder, providers []translator.TranslationService, logger zerolog.Logger, opts Options) *Server {
	if strings.TrimSpace(opts.Addr) == "" {
		opts.Addr = ":8080"
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 90 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		translator: t,
		history:    history,
		providers:  providers,
		logger:     logger.With().Str("component", "httpapi").Logger(),
		opts:       opts,
	}
	s.echo = s.routes()
	return s
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := s.logger.Info()
			if v.Error != nil {
				event = s.logger.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/languages", s.handleLanguages)
	api.POST("/translate", s.handleTranslate)
	return e
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.echo,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", s.opts.Addr).Strs("services", s.serviceNames()).Msg("voicetran api started")

	if err := s.echo.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) serviceNames() []string {
	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}
	return names
}

type serviceStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// handleHealth reports "degraded" when a provider is not usable; the chain may
// still answer through the other one.
func (s *Server) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	status := "ok"
	services := make([]serviceStatus, 0, len(s.providers))
	for _, p := range s.providers {
		st := serviceStatus{Name: p.Name(), Available: true}
		if err := p.IsAvailable(ctx); err != nil {
			st.Available = false
			st.Error = err.Error()
			status = "degraded"
		}
		services = append(services, st)
	}
	return success(c, map[string]any{
		"status":   status,
		"services": services,
	})
}

type languageResponse struct {
	language.Language
	Services []string `json:"services"`
}

// handleLanguages lists the catalog with the providers that accept each
// language. A provider without a published list accepts all of them.
func (s *Server) handleLanguages(c echo.Context) error {
	ctx := c.Request().Context()
	supported := make(map[string]map[string]bool, len(s.providers))
	for _, p := range s.providers {
		codes, err := p.SupportedLanguages(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Str("service", p.Name()).Msg("failed to list supported languages")
			continue
		}
		if codes == nil {
			continue
		}
		set := make(map[string]bool, len(codes))
		for _, code := range codes {
			set[code] = true
		}
		supported[p.Name()] = set
	}

	catalog := language.Catalog()
	out := make([]languageResponse, 0, len(catalog))
	for _, l := range catalog {
		entry := languageResponse{Language: l, Services: []string{}}
		for _, p := range s.providers {
			if set, ok := supported[p.Name()]; ok && !set[l.Code] {
				continue
			}
			entry.Services = append(entry.Services, p.Name())
		}
		out = append(out, entry)
	}
	return success(c, out)
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	Source         string `json:"source"`
	Target         string `json:"target"`
	Service        string `json:"service,omitempty"`
	LatencyMs      int64  `json:"latency_ms"`
	FellBack       bool   `json:"fell_back"`
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}

	fieldErrors := map[string]string{}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		fieldErrors["text"] = "text is required"
	} else if len(text) > maxTextLength {
		fieldErrors["text"] = fmt.Sprintf("text exceeds %d bytes", maxTextLength)
	}
	source, err := language.Lookup(req.Source)
	if err != nil {
		fieldErrors["source"] = err.Error()
	}
	target, err := language.Lookup(req.Target)
	if err != nil {
		fieldErrors["target"] = err.Error()
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	ctrl := session.New(s.translator, session.WithHistory(s.history), session.WithLogger(s.logger))
	if err := ctrl.SetSource(source.Code); err != nil {
		return failValidation(c, map[string]string{"source": err.Error()})
	}
	if err := ctrl.SetTarget(target.Code); err != nil {
		return failValidation(c, map[string]string{"target": err.Error()})
	}

	rec, err := ctrl.Translate(c.Request().Context(), text)
	if err != nil {
		var exhausted *orchestrator.ExhaustedError
		if errors.As(err, &exhausted) {
			return errorWithData(c, http.StatusBadGateway, "Translation failed", map[string]any{
				"attempts": attemptSummaries(exhausted.Attempts),
			})
		}
		if errors.Is(err, translator.ErrAllProvidersExhausted) {
			return errorWithStatus(c, http.StatusBadGateway, "Translation failed")
		}
		return errorWithStatus(c, http.StatusInternalServerError, "Translation failed")
	}

	return success(c, translateResponse{
		TranslatedText: rec.TranslatedText,
		Source:         rec.SourceLang,
		Target:         rec.TargetLang,
		Service:        rec.ServiceName,
		LatencyMs:      rec.Latency.Milliseconds(),
		FellBack:       rec.PrimaryError != "",
	})
}

type attemptSummary struct {
	Service   string `json:"service"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

func attemptSummaries(attempts []translator.ServiceResult) []attemptSummary {
	out := make([]attemptSummary, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, attemptSummary{
			Service:   a.ServiceName,
			Error:     a.Error,
			LatencyMs: a.Latency.Milliseconds(),
		})
	}
	return out
}

var _ session.Translator = (*orchestrator.Client)(nil)
