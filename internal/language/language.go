// Package language holds the closed set of languages offered for speech
// input and translation.
package language

import (
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
)

// Language is immutable; the full set is Catalog.
type Language struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	// SpeechLocale is the locale handed to a speech recognizer.
	SpeechLocale string `json:"speech_locale"`
}

var (
	English    = Language{Code: "en", DisplayName: "English", SpeechLocale: "en"}
	Spanish    = Language{Code: "es", DisplayName: "Spanish", SpeechLocale: "es"}
	French     = Language{Code: "fr", DisplayName: "French", SpeechLocale: "fr"}
	German     = Language{Code: "de", DisplayName: "German", SpeechLocale: "de"}
	Italian    = Language{Code: "it", DisplayName: "Italian", SpeechLocale: "it"}
	Portuguese = Language{Code: "pt", DisplayName: "Portuguese", SpeechLocale: "pt-BR"}
	Russian    = Language{Code: "ru", DisplayName: "Russian", SpeechLocale: "ru"}
	Chinese    = Language{Code: "zh", DisplayName: "Chinese", SpeechLocale: "zh-CN"}
	Japanese   = Language{Code: "ja", DisplayName: "Japanese", SpeechLocale: "ja"}
	Korean     = Language{Code: "ko", DisplayName: "Korean", SpeechLocale: "ko"}
	Arabic     = Language{Code: "ar", DisplayName: "Arabic", SpeechLocale: "ar"}
	Hindi      = Language{Code: "hi", DisplayName: "Hindi", SpeechLocale: "hi"}
)

var catalog = []Language{
	English, Spanish, French, German, Italian, Portuguese,
	Russian, Chinese, Japanese, Korean, Arabic, Hindi,
}

// Catalog returns the supported languages in display order. The slice is a
// copy.
func Catalog() []Language {
	out := make([]Language, len(catalog))
	copy(out, catalog)
	return out
}

func (l Language) String() string {
	return l.DisplayName
}

// Lookup resolves a code to a catalog entry. Case, '_' separators and region
// subtags are ignored, so "en-US", "EN" and "pt_BR" all resolve.
func Lookup(code string) (Language, error) {
	base := baseCode(code)
	if base == "" {
		return Language{}, fmt.Errorf("invalid language code: %q", code)
	}
	for _, l := range catalog {
		if l.Code == base {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("unsupported language: %q (supported: %s)", code, strings.Join(Codes(), ", "))
}

// Codes returns the catalog codes in display order.
func Codes() []string {
	codes := make([]string, len(catalog))
	for i, l := range catalog {
		codes[i] = l.Code
	}
	return codes
}

func baseCode(raw string) string {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	if raw == "" {
		return ""
	}
	tag, err := xlanguage.Parse(raw)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
