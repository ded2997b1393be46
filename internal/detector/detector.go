// Package detector guesses the language of input text when the user asks
// for automatic source detection.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/voicetran/internal/language"
)

// catalogLanguages restricts detection to what the catalog offers; a smaller
// candidate set is both faster and more accurate on short utterances.
var catalogLanguages = []lingua.Language{
	lingua.English, lingua.Spanish, lingua.French, lingua.German,
	lingua.Italian, lingua.Portuguese, lingua.Russian, lingua.Chinese,
	lingua.Japanese, lingua.Korean, lingua.Arabic, lingua.Hindi,
}

// Detector is expensive to build; reuse the instance.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(catalogLanguages...).
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// DetectCatalog returns the catalog entry for the detected language.
func (d *Detector) DetectCatalog(text string) (language.Language, bool) {
	code, ok := d.DetectISO(text)
	if !ok {
		return language.Language{}, false
	}
	l, err := language.Lookup(code)
	if err != nil {
		return language.Language{}, false
	}
	return l, true
}
