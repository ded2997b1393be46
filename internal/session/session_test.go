package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/voicetran/internal"
	"github.com/valpere/voicetran/internal/language"
	"github.com/valpere/voicetran/internal/orchestrator"
	"github.com/valpere/voicetran/internal/speech"
	"github.com/valpere/voicetran/internal/translator"
)

type mockTranslator struct {
	calls   atomic.Int32
	lastReq translator.TranslateRequest
	result  *orchestrator.Result
	err     error
}

func (m *mockTranslator) Execute(ctx context.Context, req translator.TranslateRequest) (*orchestrator.Result, error) {
	m.calls.Add(1)
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &orchestrator.Result{TranslatedText: "Hola", ServiceName: "libretranslate"}, nil
}

type mockHistory struct {
	records []internal.TranslationRecord
	err     error
}

func (m *mockHistory) SaveTranslation(ctx context.Context, rec internal.TranslationRecord) error {
	m.records = append(m.records, rec)
	return m.err
}

func TestController_Defaults(t *testing.T) {
	c := New(&mockTranslator{})

	source, target := c.Languages()
	if source != language.English || target != language.Spanish {
		t.Errorf("unexpected defaults: %v -> %v", source, target)
	}
	if c.Listening() {
		t.Error("expected not listening")
	}
}

func TestController_Translate_Identity(t *testing.T) {
	mt := &mockTranslator{}
	c := New(mt)
	if err := c.SetTarget("en"); err != nil {
		t.Fatalf("SetTarget failed: %v", err)
	}

	for _, text := range []string{"Hello", "こんにちは 世界", "  padded  "} {
		rec, err := c.Translate(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.TranslatedText != strings.TrimSpace(text) {
			t.Errorf("expected identity for %q, got %q", text, rec.TranslatedText)
		}
		if !rec.Identity() {
			t.Error("expected identity record")
		}
	}

	if n := mt.calls.Load(); n != 0 {
		t.Errorf("expected no translator calls, got %d", n)
	}
}

func TestController_Translate_EmptyText(t *testing.T) {
	mt := &mockTranslator{}
	c := New(mt)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := c.Translate(context.Background(), text); !errors.Is(err, ErrEmptyText) {
			t.Errorf("expected ErrEmptyText for %q, got %v", text, err)
		}
	}
	if mt.calls.Load() != 0 {
		t.Error("translator must not be called for empty text")
	}
}

func TestController_Translate_Delegates(t *testing.T) {
	mt := &mockTranslator{}
	h := &mockHistory{}
	c := New(mt, WithHistory(h))

	rec, err := c.Translate(context.Background(), "  Hello ")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.TranslatedText != "Hola" || rec.ServiceName != "libretranslate" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if mt.lastReq.Text != "Hello" || mt.lastReq.SourceLang != "en" || mt.lastReq.TargetLang != "es" {
		t.Errorf("unexpected request: %+v", mt.lastReq)
	}
	if len(h.records) != 1 || h.records[0].SourceText != "Hello" {
		t.Errorf("expected history record, got %+v", h.records)
	}
}

func TestController_Translate_KeepsPrimaryError(t *testing.T) {
	mt := &mockTranslator{result: &orchestrator.Result{
		TranslatedText: "Hola",
		ServiceName:    "mymemory",
		PrimaryError:   errors.New("libretranslate: down"),
	}}
	c := New(mt)

	rec, err := c.Translate(context.Background(), "Hello")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.PrimaryError != "libretranslate: down" {
		t.Errorf("expected primary error in record, got %q", rec.PrimaryError)
	}
}

func TestController_Translate_Failure(t *testing.T) {
	h := &mockHistory{}
	mt := &mockTranslator{err: &orchestrator.ExhaustedError{Secondary: errors.New("mymemory: 403")}}
	c := New(mt, WithHistory(h))

	_, err := c.Translate(context.Background(), "Hello")

	if !errors.Is(err, translator.ErrAllProvidersExhausted) {
		t.Errorf("expected ErrAllProvidersExhausted, got %v", err)
	}
	if len(h.records) != 0 {
		t.Error("failed translations must not be recorded")
	}
}

func TestController_Translate_HistoryErrorIgnored(t *testing.T) {
	c := New(&mockTranslator{}, WithHistory(&mockHistory{err: errors.New("disk full")}))

	if _, err := c.Translate(context.Background(), "Hello"); err != nil {
		t.Errorf("history failure must not fail the translation: %v", err)
	}
}

func TestController_SwapAndSet(t *testing.T) {
	c := New(&mockTranslator{})

	c.Swap()
	source, target := c.Languages()
	if source != language.Spanish || target != language.English {
		t.Errorf("unexpected swap result: %v -> %v", source, target)
	}

	if err := c.SetSource("zh-CN"); err != nil {
		t.Fatalf("SetSource failed: %v", err)
	}
	if source, _ = c.Languages(); source != language.Chinese {
		t.Errorf("expected Chinese, got %v", source)
	}

	if err := c.SetTarget("tlh"); err == nil {
		t.Error("expected error for unsupported language")
	}
	if _, target = c.Languages(); target != language.English {
		t.Errorf("target must be unchanged after failed set, got %v", target)
	}
}

type recordingRecognizer struct {
	locale  string
	stopped atomic.Bool
	startFn func(listener speech.Listener)
	err     error
}

func (r *recordingRecognizer) Start(ctx context.Context, locale string, listener speech.Listener) error {
	r.locale = locale
	if r.err != nil {
		return r.err
	}
	go r.startFn(listener)
	return nil
}

func (r *recordingRecognizer) Stop() { r.stopped.Store(true) }

func TestController_Listen(t *testing.T) {
	mt := &mockTranslator{}
	c := New(mt)
	c.SetSource("pt")
	rec := &recordingRecognizer{startFn: func(l speech.Listener) {
		l.OnPartial("bom")
		l.OnResult("bom dia")
	}}

	var partials []string
	got, err := c.Listen(context.Background(), rec, func(s string) { partials = append(partials, s) })

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.locale != "pt-BR" {
		t.Errorf("expected speech locale pt-BR, got %q", rec.locale)
	}
	if got.SourceText != "bom dia" || mt.lastReq.Text != "bom dia" {
		t.Errorf("expected recognized text to be translated, got %+v", got)
	}
	if len(partials) != 1 {
		t.Errorf("expected one partial, got %v", partials)
	}
	if c.Listening() {
		t.Error("listening flag must be reset")
	}
}

func TestController_Listen_RecognitionError(t *testing.T) {
	mt := &mockTranslator{}
	c := New(mt)
	rec := &recordingRecognizer{startFn: func(l speech.Listener) {
		l.OnError(&speech.RecognitionError{Kind: speech.ErrorNetworkTimeout})
	}}

	_, err := c.Listen(context.Background(), rec, nil)

	if !speech.IsKind(err, speech.ErrorNetworkTimeout) {
		t.Errorf("expected network timeout, got %v", err)
	}
	if !rec.stopped.Load() {
		t.Error("expected recognizer to be stopped")
	}
	if c.Listening() {
		t.Error("listening flag must be reset after error")
	}
	if mt.calls.Load() != 0 {
		t.Error("translator must not be called")
	}
}

func TestController_Listen_StartError(t *testing.T) {
	c := New(&mockTranslator{})
	rec := &recordingRecognizer{err: &speech.RecognitionError{Kind: speech.ErrorInsufficientPermissions}}

	_, err := c.Listen(context.Background(), rec, nil)

	if !speech.IsKind(err, speech.ErrorInsufficientPermissions) {
		t.Errorf("expected permissions error, got %v", err)
	}
	if c.Listening() {
		t.Error("listening flag must be reset")
	}
}

func TestController_Listen_AlreadyListening(t *testing.T) {
	c := New(&mockTranslator{})
	release := make(chan struct{})
	started := make(chan struct{})
	rec := &recordingRecognizer{startFn: func(l speech.Listener) {
		close(started)
		<-release
		l.OnResult("hello")
	}}

	done := make(chan error, 1)
	go func() {
		_, err := c.Listen(context.Background(), rec, nil)
		done <- err
	}()
	<-started

	if _, err := c.Listen(context.Background(), &recordingRecognizer{}, nil); !errors.Is(err, ErrAlreadyListening) {
		t.Errorf("expected ErrAlreadyListening, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestController_Listen_LineRecognizer(t *testing.T) {
	mt := &mockTranslator{}
	c := New(mt)

	got, err := c.Listen(context.Background(), speech.NewLineRecognizer(strings.NewReader("good morning\n")), nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TranslatedText != "Hola" || mt.lastReq.Text != "good morning" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestController_Listen_CancelledSessionKeepsInput(t *testing.T) {
	mt := &mockTranslator{}
	c := New(mt)
	pr, pw := io.Pipe()
	defer pw.Close()
	rec := speech.NewLineRecognizer(pr)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Listen(ctx, rec, nil)

	var recErr *speech.RecognitionError
	if !errors.As(err, &recErr) || recErr.Kind != speech.ErrorClient {
		t.Fatalf("expected client recognition error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline to be wrapped, got %v", err)
	}
	if c.Listening() {
		t.Error("listening flag must be reset")
	}

	go pw.Write([]byte("hello\n"))

	got, err := c.Listen(context.Background(), rec, nil)
	if err != nil {
		t.Fatalf("second listen failed: %v", err)
	}
	if got.SourceText != "hello" || mt.lastReq.Text != "hello" {
		t.Errorf("expected the next line to reach the second session, got %+v", got)
	}
	if mt.calls.Load() != 1 {
		t.Errorf("expected one translation, got %d", mt.calls.Load())
	}
}
