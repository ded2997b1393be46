// Package speech defines the boundary to a host speech recognizer. The
// recognizer itself lives outside this module; LineRecognizer stands in for
// it when text is typed.
package speech

import (
	"context"
	"errors"
	"sync"
)

// RecognitionErrorKind mirrors the failure classes platform recognizers report.
type RecognitionErrorKind int

const (
	ErrorUnknown RecognitionErrorKind = iota
	ErrorAudio
	ErrorClient
	ErrorInsufficientPermissions
	ErrorNetwork
	ErrorNetworkTimeout
	ErrorNoMatch
	ErrorRecognizerBusy
	ErrorServer
	ErrorSpeechTimeout
)

var kindMessages = map[RecognitionErrorKind]string{
	ErrorUnknown:                 "Unknown error",
	ErrorAudio:                   "Audio error",
	ErrorClient:                  "Client error",
	ErrorInsufficientPermissions: "Insufficient permissions",
	ErrorNetwork:                 "Network error",
	ErrorNetworkTimeout:          "Network timeout",
	ErrorNoMatch:                 "No match found",
	ErrorRecognizerBusy:          "Recognizer busy",
	ErrorServer:                  "Server error",
	ErrorSpeechTimeout:           "Speech timeout",
}

func (k RecognitionErrorKind) String() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[ErrorUnknown]
}

type RecognitionError struct {
	Kind RecognitionErrorKind
	Err  error
}

func (e *RecognitionError) Error() string {
	if e.Err != nil {
		return "speech recognition: " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "speech recognition: " + e.Kind.String()
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a RecognitionError of the given kind.
func IsKind(err error, kind RecognitionErrorKind) bool {
	var rerr *RecognitionError
	return errors.As(err, &rerr) && rerr.Kind == kind
}

// Listener receives recognizer events. OnResult or OnError is called at most
// once per session; OnPartial may be called any number of times before that.
type Listener interface {
	OnPartial(text string)
	OnResult(text string)
	OnError(err *RecognitionError)
}

// Recognizer is the host speech capture service.
type Recognizer interface {
	// Start begins a session for locale and returns without waiting for speech.
	Start(ctx context.Context, locale string, listener Listener) error
	Stop()
}

// Future is resolved once with recognized text or a recognition error. It
// implements Listener so it can be handed straight to a Recognizer.
type Future struct {
	once     sync.Once
	done     chan struct{}
	text     string
	err      error
	onUpdate func(string)
}

// NewFuture returns an unresolved future. onPartial may be nil.
func NewFuture(onPartial func(string)) *Future {
	return &Future{done: make(chan struct{}), onUpdate: onPartial}
}

func (f *Future) OnPartial(text string) {
	select {
	case <-f.done:
		return
	default:
	}
	if f.onUpdate != nil {
		f.onUpdate(text)
	}
}

func (f *Future) OnResult(text string) {
	f.resolve(text, nil)
}

func (f *Future) OnError(err *RecognitionError) {
	if err == nil {
		err = &RecognitionError{Kind: ErrorUnknown}
	}
	f.resolve("", err)
}

func (f *Future) resolve(text string, err error) {
	f.once.Do(func() {
		f.text = text
		f.err = err
		close(f.done)
	})
}

// Await blocks until the future resolves or ctx ends.
func (f *Future) Await(ctx context.Context) (string, error) {
	select {
	case <-f.done:
		return f.text, f.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
