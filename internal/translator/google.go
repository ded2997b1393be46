package translator

import (
	"context"
	"errors"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleService talks to Cloud Translation v2. It is an alternative to the
// free HTTP providers and can take either slot of the fallback chain.
type GoogleService struct {
	credentials string
	opts        []option.ClientOption
}

// NewGoogleService takes a credentials file path; opts are appended to the
// client options on every call.
func NewGoogleService(credentials string, opts ...option.ClientOption) *GoogleService {
	return &GoogleService{credentials: credentials, opts: opts}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	targetLangTag, err := language.Parse(req.TargetLang)
	if err != nil {
		return fail(result, rejected(s.Name(), 0, fmt.Errorf("invalid target language: %w", err)))
	}

	credentials := s.credentials
	if credentials == "" {
		credentials = cfg.Credentials
	}
	var opts []option.ClientOption
	if credentials != "" {
		opts = append(opts, option.WithCredentialsFile(credentials))
	}
	opts = append(opts, s.opts...)

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return fail(result, unavailable(s.Name(), fmt.Errorf("failed to create client: %w", err)))
	}
	defer client.Close()

	options := &translate.Options{Format: translate.Text}
	if req.SourceLang != "" {
		if sourceLangTag, err := language.Parse(req.SourceLang); err == nil {
			options.Source = sourceLangTag
		}
	}

	translations, err := client.Translate(ctx, []string{req.Text}, targetLangTag, options)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return fail(result, rejected(s.Name(), apiErr.Code, err))
		}
		return fail(result, unavailable(s.Name(), err))
	}

	if len(translations) == 0 {
		return fail(result, malformed(s.Name(), fmt.Errorf("no translation returned")))
	}

	// Text format: the API returns plain text, entities typed by the user stay as typed.
	result.TranslatedText = translations[0].Text
	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}

func (s *GoogleService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return nil, nil
}
