// Package orchestrator runs a translation through a primary provider and, if
// that attempt fails, exactly once through a secondary provider.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/valpere/voicetran/internal/translator"
)

type OrchestratorConfig struct {
	// Timeout bounds each provider attempt. Zero leaves the shared HTTP
	// client's default in charge.
	Timeout time.Duration
	Service translator.ServiceConfig
}

// Result is a successful translation plus every attempt made to get it.
type Result struct {
	TranslatedText string
	ServiceName    string
	Latency        time.Duration
	Attempts       []translator.ServiceResult
	// PrimaryError is set when the answer came from the secondary provider.
	PrimaryError error
}

// FellBack reports whether the secondary provider produced the result.
func (r *Result) FellBack() bool {
	return r.PrimaryError != nil
}

// ExhaustedError is returned when both providers failed. Unwrap exposes
// ErrAllProvidersExhausted and the secondary failure; the primary failure is
// kept for diagnostics only.
type ExhaustedError struct {
	Primary   error
	Secondary error
	Attempts  []translator.ServiceResult
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v: %v", translator.ErrAllProvidersExhausted, e.Secondary)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{translator.ErrAllProvidersExhausted, e.Secondary}
}

// Client is stateless between calls and safe for concurrent use as long as
// the providers are.
type Client struct {
	primary   translator.TranslationService
	secondary translator.TranslationService
	config    OrchestratorConfig
	logger    zerolog.Logger
}

func New(primary, secondary translator.TranslationService, config OrchestratorConfig, logger zerolog.Logger) (*Client, error) {
	if primary == nil || secondary == nil {
		return nil, fmt.Errorf("both primary and secondary services are required")
	}
	if primary.Name() == secondary.Name() {
		return nil, fmt.Errorf("primary and secondary services must differ, both are %q", primary.Name())
	}
	return &Client{
		primary:   primary,
		secondary: secondary,
		config:    config,
		logger:    logger.With().Str("component", "orchestrator").Logger(),
	}, nil
}

// Providers returns the providers in attempt order.
func (c *Client) Providers() []translator.TranslationService {
	return []translator.TranslationService{c.primary, c.secondary}
}

// Translate returns the translated text or an *ExhaustedError.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	res, err := c.Execute(ctx, translator.TranslateRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", err
	}
	return res.TranslatedText, nil
}

// Execute is Translate with the attempt details kept.
func (c *Client) Execute(ctx context.Context, req translator.TranslateRequest) (*Result, error) {
	start := time.Now()
	attempts := make([]translator.ServiceResult, 0, 2)

	res, primaryErr := c.attempt(ctx, c.primary, req)
	attempts = append(attempts, res)
	if primaryErr == nil {
		return &Result{
			TranslatedText: res.TranslatedText,
			ServiceName:    res.ServiceName,
			Latency:        time.Since(start),
			Attempts:       attempts,
		}, nil
	}

	c.logger.Warn().
		Err(primaryErr).
		Str("service", c.primary.Name()).
		Str("fallback", c.secondary.Name()).
		Msg("primary translation failed, falling back")

	res, secondaryErr := c.attempt(ctx, c.secondary, req)
	attempts = append(attempts, res)
	if secondaryErr != nil {
		c.logger.Error().
			Err(secondaryErr).
			Str("service", c.secondary.Name()).
			Msg("translation failed")
		return nil, &ExhaustedError{
			Primary:   primaryErr,
			Secondary: secondaryErr,
			Attempts:  attempts,
		}
	}

	return &Result{
		TranslatedText: res.TranslatedText,
		ServiceName:    res.ServiceName,
		Latency:        time.Since(start),
		Attempts:       attempts,
		PrimaryError:   primaryErr,
	}, nil
}

// attempt makes one call and folds every failure shape into a single error.
func (c *Client) attempt(ctx context.Context, svc translator.TranslationService, req translator.TranslateRequest) (translator.ServiceResult, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	res, err := svc.Translate(ctx, c.config.Service, req)
	if res == nil {
		res = &translator.ServiceResult{ServiceName: svc.Name()}
	}
	switch {
	case err != nil:
		if res.Error == "" {
			res.Error = err.Error()
		}
	case res.Failed():
		err = errors.New(res.Error)
	}

	c.logger.Debug().
		Str("service", svc.Name()).
		Dur("latency", res.Latency).
		Bool("ok", err == nil).
		Msg("translation attempt")

	return *res, err
}
