package detector

import (
	"testing"

	"github.com/valpere/voicetran/internal/language"
)

var shared = New()

func TestDetector_Detect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLang string
		wantOK   bool
	}{
		{name: "empty text", text: "", wantOK: false},
		{name: "blank text", text: "   ", wantOK: false},
		{name: "english text", text: "Hello, this is a test in English.", wantLang: "English", wantOK: true},
		{name: "german text", text: "Hallo, das ist ein Test auf Deutsch.", wantLang: "German", wantOK: true},
		{name: "french text", text: "Bonjour, ceci est un test en français.", wantLang: "French", wantOK: true},
		{name: "spanish text", text: "Hola, esto es una prueba en español.", wantLang: "Spanish", wantOK: true},
		{name: "russian text", text: "Привет, это тест на русском языке.", wantLang: "Russian", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := shared.Detect(tt.text)
			if ok != tt.wantOK {
				t.Errorf("Detect(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if ok && lang.String() != tt.wantLang {
				t.Errorf("Detect(%q) = %s, want %s", tt.text, lang, tt.wantLang)
			}
		})
	}
}

func TestDetector_DetectISO(t *testing.T) {
	tests := []struct {
		text    string
		wantISO string
	}{
		{"Hello, this is a test in English.", "en"},
		{"Hallo, das ist ein Test auf Deutsch.", "de"},
		{"Hola, esto es una prueba en español.", "es"},
	}

	for _, tt := range tests {
		iso, ok := shared.DetectISO(tt.text)
		if !ok {
			t.Errorf("DetectISO(%q) failed", tt.text)
			continue
		}
		if iso != tt.wantISO {
			t.Errorf("DetectISO(%q) = %q, want %q", tt.text, iso, tt.wantISO)
		}
	}
}

func TestDetector_DetectCatalog(t *testing.T) {
	got, ok := shared.DetectCatalog("Bonjour, ceci est un test en français.")
	if !ok {
		t.Fatal("expected detection to succeed")
	}
	if got != language.French {
		t.Errorf("expected French, got %v", got)
	}

	if _, ok := shared.DetectCatalog(""); ok {
		t.Error("expected empty text to fail")
	}
}

func TestCatalogLanguagesCovered(t *testing.T) {
	if len(catalogLanguages) != len(language.Catalog()) {
		t.Fatalf("detector knows %d languages, catalog has %d", len(catalogLanguages), len(language.Catalog()))
	}
	for _, l := range catalogLanguages {
		code := l.IsoCode639_1().String()
		if _, err := language.Lookup(code); err != nil {
			t.Errorf("detector language %s (%s) missing from catalog", l, code)
		}
	}
}
