package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultLibreTranslateURL = "https://libretranslate.de/translate"

// defaultHTTPTimeout is the shared client timeout. Providers never override it
// per request.
const defaultHTTPTimeout = 30 * time.Second

// NewHTTPClient returns the client handle shared by the HTTP providers.
// *http.Client is safe for concurrent use.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

type LibreTranslateService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewLibreTranslateService(baseURL, apiKey string, client *http.Client) *LibreTranslateService {
	if baseURL == "" {
		baseURL = DefaultLibreTranslateURL
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &LibreTranslateService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
	}
}

func (s *LibreTranslateService) Name() string {
	return "libretranslate"
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

func (s *LibreTranslateService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	apiKey := s.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}

	body, err := json.Marshal(libreRequest{
		Q:      req.Text,
		Source: req.SourceLang,
		Target: req.TargetLang,
		Format: "text",
		APIKey: apiKey,
	})
	if err != nil {
		return fail(result, malformed(s.Name(), fmt.Errorf("failed to marshal request: %w", err)))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return fail(result, unavailable(s.Name(), fmt.Errorf("failed to create request: %w", err)))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, unavailable(s.Name(), err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fail(result, rejected(s.Name(), resp.StatusCode, fmt.Errorf("%s", bytes.TrimSpace(snippet))))
	}

	var libreResp struct {
		TranslatedText *string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&libreResp); err != nil {
		return fail(result, malformed(s.Name(), fmt.Errorf("failed to decode response: %w", err)))
	}
	if libreResp.TranslatedText == nil {
		return fail(result, malformed(s.Name(), fmt.Errorf("missing translatedText field")))
	}

	result.TranslatedText = *libreResp.TranslatedText
	return result, nil
}

func (s *LibreTranslateService) IsAvailable(ctx context.Context) error {
	if s.baseURL == "" {
		return fmt.Errorf("LibreTranslate URL not configured")
	}
	return nil
}

func (s *LibreTranslateService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{
		"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja", "ko",
		"ar", "hi", "nl", "pl", "tr", "uk", "sv", "cs", "id", "vi",
	}, nil
}
