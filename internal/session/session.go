// Package session holds the state a front end keeps between user actions:
// the selected language pair and whether speech capture is running.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/valpere/voicetran/internal"
	"github.com/valpere/voicetran/internal/language"
	"github.com/valpere/voicetran/internal/orchestrator"
	"github.com/valpere/voicetran/internal/speech"
	"github.com/valpere/voicetran/internal/translator"
)

var (
	ErrEmptyText        = errors.New("nothing to translate")
	ErrAlreadyListening = errors.New("speech capture already running")
)

// Translator is satisfied by *orchestrator.Client.
type Translator interface {
	Execute(ctx context.Context, req translator.TranslateRequest) (*orchestrator.Result, error)
}

// HistoryRecorder persists completed translations. *store.Store implements it.
type HistoryRecorder interface {
	SaveTranslation(ctx context.Context, rec internal.TranslationRecord) error
}

type Controller struct {
	translator Translator
	history    HistoryRecorder
	logger     zerolog.Logger

	mu        sync.Mutex
	source    language.Language
	target    language.Language
	listening bool
}

type Option func(*Controller)

// WithHistory records every successful provider translation.
func WithHistory(h HistoryRecorder) Option {
	return func(c *Controller) { c.history = h }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// New starts with English to Spanish selected.
func New(t Translator, opts ...Option) *Controller {
	c := &Controller{
		translator: t,
		logger:     zerolog.Nop(),
		source:     language.English,
		target:     language.Spanish,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Languages() (source, target language.Language) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source, c.target
}

func (c *Controller) SetSource(code string) error {
	l, err := language.Lookup(code)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.source = l
	c.mu.Unlock()
	return nil
}

func (c *Controller) SetTarget(code string) error {
	l, err := language.Lookup(code)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.target = l
	c.mu.Unlock()
	return nil
}

// Swap exchanges source and target.
func (c *Controller) Swap() {
	c.mu.Lock()
	c.source, c.target = c.target, c.source
	c.mu.Unlock()
}

func (c *Controller) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Translate trims text and translates it with the current language pair.
// When source and target are the same the text comes back untouched and no
// provider is contacted.
func (c *Controller) Translate(ctx context.Context, text string) (internal.TranslationRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return internal.TranslationRecord{}, ErrEmptyText
	}

	source, target := c.Languages()
	rec := internal.TranslationRecord{
		SourceText: text,
		SourceLang: source.Code,
		TargetLang: target.Code,
		Timestamp:  time.Now(),
	}

	if source.Code == target.Code {
		rec.TranslatedText = text
		return rec, nil
	}

	res, err := c.translator.Execute(ctx, translator.TranslateRequest{
		Text:       text,
		SourceLang: source.Code,
		TargetLang: target.Code,
	})
	if err != nil {
		return internal.TranslationRecord{}, fmt.Errorf("translation failed: %w", err)
	}

	c.logger.Debug().
		Str("service", res.ServiceName).
		Int("attempts", len(res.Attempts)).
		Dur("latency", res.Latency).
		Msg("translation completed")

	rec.TranslatedText = res.TranslatedText
	rec.ServiceName = res.ServiceName
	rec.Latency = res.Latency
	if res.PrimaryError != nil {
		rec.PrimaryError = res.PrimaryError.Error()
	}

	if c.history != nil {
		if err := c.history.SaveTranslation(ctx, rec); err != nil {
			c.logger.Warn().Err(err).Msg("failed to record translation history")
		}
	}

	return rec, nil
}

// Listen runs one speech capture session in the source language and
// translates the final recognized text. onPartial, if set, receives interim
// hypotheses. The listening flag is cleared however the session ends.
func (c *Controller) Listen(ctx context.Context, rec speech.Recognizer, onPartial func(string)) (internal.TranslationRecord, error) {
	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return internal.TranslationRecord{}, ErrAlreadyListening
	}
	c.listening = true
	locale := c.source.SpeechLocale
	c.mu.Unlock()

	text, err := c.capture(ctx, rec, locale, onPartial)

	c.mu.Lock()
	c.listening = false
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug().Err(err).Str("locale", locale).Msg("speech capture ended without text")
		return internal.TranslationRecord{}, err
	}
	return c.Translate(ctx, text)
}

func (c *Controller) capture(ctx context.Context, rec speech.Recognizer, locale string, onPartial func(string)) (string, error) {
	future := speech.NewFuture(onPartial)
	if err := rec.Start(ctx, locale, future); err != nil {
		return "", err
	}
	text, err := future.Await(ctx)
	if err != nil {
		rec.Stop()
		var recErr *speech.RecognitionError
		if !errors.As(err, &recErr) {
			err = &speech.RecognitionError{Kind: speech.ErrorClient, Err: err}
		}
	}
	return text, err
}
