package internal

import "time"

// TranslationRecord is a completed translation as shown to the user.
type TranslationRecord struct {
	ID             string        `json:"id,omitempty"`
	SourceText     string        `json:"source_text"`
	TranslatedText string        `json:"translated_text"`
	SourceLang     string        `json:"source_lang"`
	TargetLang     string        `json:"target_lang"`
	ServiceName    string        `json:"service_name,omitempty"`
	Latency        time.Duration `json:"latency"`
	PrimaryError   string        `json:"primary_error,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// Identity reports whether the record was produced without a provider call.
func (r TranslationRecord) Identity() bool {
	return r.ServiceName == ""
}
