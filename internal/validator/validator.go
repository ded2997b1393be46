// Package validator checks that a translation came back in the requested
// target language.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/voicetran/internal/detector"
	"github.com/valpere/voicetran/internal/language"
)

// minValidationLength is the minimum rune count required to attempt language detection.
const minValidationLength = 20

var ErrLanguageMismatch = errors.New("translation is not in the target language")

// Validator shares one detector; build it once.
type Validator struct {
	det *detector.Detector
}

func New(det *detector.Detector) *Validator {
	if det == nil {
		det = detector.New()
	}
	return &Validator{det: det}
}

// Check reports ErrLanguageMismatch when translated is confidently written in
// a catalog language other than target. Short or ambiguous text passes.
func (v *Validator) Check(translated string, target language.Language) error {
	text := strings.TrimSpace(translated)
	if text == "" {
		return fmt.Errorf("translation is empty")
	}
	if len([]rune(text)) < minValidationLength {
		return nil
	}

	detected, ok := v.det.DetectCatalog(text)
	if !ok {
		return nil
	}
	if detected.Code != target.Code {
		return fmt.Errorf("%w: expected %s, detected %s", ErrLanguageMismatch, target.Code, detected.Code)
	}
	return nil
}
