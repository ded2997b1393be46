package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultMyMemoryURL = "https://api.mymemory.translated.net/get"

type MyMemoryService struct {
	baseURL string
	email   string
	client  *http.Client
}

func NewMyMemoryService(baseURL, email string, client *http.Client) *MyMemoryService {
	if baseURL == "" {
		baseURL = DefaultMyMemoryURL
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &MyMemoryService{
		baseURL: baseURL,
		email:   email,
		client:  client,
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

// requestURL builds the GET url. The langpair separator is a literal '|':
// MyMemory expects "en|fr", not "en%7Cfr".
func (s *MyMemoryService) requestURL(req TranslateRequest) string {
	query := "q=" + url.QueryEscape(req.Text) +
		"&langpair=" + url.QueryEscape(req.SourceLang) + "|" + url.QueryEscape(req.TargetLang)
	if s.email != "" {
		query += "&de=" + url.QueryEscape(s.email)
	}
	return s.baseURL + "?" + query
}

func (s *MyMemoryService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.requestURL(req), nil)
	if err != nil {
		return fail(result, unavailable(s.Name(), fmt.Errorf("failed to create request: %w", err)))
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, unavailable(s.Name(), err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(result, rejected(s.Name(), resp.StatusCode, nil))
	}

	var mymemResp struct {
		ResponseData *struct {
			TranslatedText *string `json:"translatedText"`
			Match          float64 `json:"match"`
		} `json:"responseData"`
		ResponseStatus  *int   `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&mymemResp); err != nil {
		return fail(result, malformed(s.Name(), fmt.Errorf("failed to decode response: %w", err)))
	}
	if mymemResp.ResponseStatus == nil {
		return fail(result, malformed(s.Name(), fmt.Errorf("missing responseStatus field")))
	}

	if status := *mymemResp.ResponseStatus; status != http.StatusOK {
		var detail error
		if mymemResp.ResponseDetails != "" {
			detail = fmt.Errorf("%s", mymemResp.ResponseDetails)
		}
		return fail(result, rejected(s.Name(), status, detail))
	}

	if mymemResp.ResponseData == nil || mymemResp.ResponseData.TranslatedText == nil {
		return fail(result, malformed(s.Name(), fmt.Errorf("missing responseData.translatedText field")))
	}

	result.TranslatedText = *mymemResp.ResponseData.TranslatedText
	result.Metadata = map[string]string{
		"match": fmt.Sprintf("%.2f", mymemResp.ResponseData.Match),
	}
	return result, nil
}

func (s *MyMemoryService) IsAvailable(ctx context.Context) error {
	return nil
}

func (s *MyMemoryService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{
		"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh",
		"ar", "nl", "pl", "tr", "sv", "da", "no", "fi", "el", "he",
		"th", "vi", "id", "ms", "cs", "hu", "ro", "uk", "bg", "ca", "hi",
	}, nil
}
