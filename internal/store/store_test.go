package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/voicetran/internal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New(t *testing.T) {
	s := newTestStore(t)

	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_New_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.SaveTranslation(context.Background(), internal.TranslationRecord{
		SourceText: "Hello", SourceLang: "en", TargetLang: "es", TranslatedText: "Hola", ServiceName: "libretranslate",
	}); err != nil {
		t.Fatalf("SaveTranslation failed: %v", err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	entries, err := s.ListHistory(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after reopen, got %d", len(entries))
	}
}

func TestStore_SaveTranslation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.SaveTranslation(ctx, internal.TranslationRecord{
		SourceText:     "  Привіт світ  ",
		SourceLang:     "uk",
		TargetLang:     "en",
		TranslatedText: "Hello world",
		ServiceName:    "mymemory",
		Latency:        150 * time.Millisecond,
		PrimaryError:   "libretranslate: status 500",
	})
	if err != nil {
		t.Fatalf("SaveTranslation failed: %v", err)
	}

	entries, err := s.ListHistory(ctx, 10)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.ID == "" {
		t.Error("expected generated ID")
	}
	if e.SourceText != "Привіт світ" {
		t.Errorf("expected trimmed source text, got %q", e.SourceText)
	}
	if e.Latency != 150*time.Millisecond {
		t.Errorf("expected 150ms latency, got %v", e.Latency)
	}
	if e.PrimaryError == "" || e.ServiceName != "mymemory" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
}

func TestStore_SaveTranslation_NFC(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	// e followed by U+0301 COMBINING ACUTE ACCENT.
	// "é" as e + combining acute accent.
	decomposed := "cafe\u0301"
	if err := s.SaveTranslation(ctx, internal.TranslationRecord{
		SourceText: decomposed, SourceLang: "fr", TargetLang: "en", TranslatedText: "coffee", ServiceName: "libretranslate",
	}); err != nil {
		t.Fatalf("SaveTranslation failed: %v", err)
	}

	entries, _ := s.ListHistory(ctx, 0)
	if len(entries) != 1 || entries[0].SourceText != "caf\u00e9" {
		t.Errorf("expected NFC-normalized text, got %+v", entries)
	}
}

func TestStore_ListHistory_OrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, text := range []string{"one", "two", "three"} {
		if err := s.SaveTranslation(ctx, internal.TranslationRecord{
			SourceText: text, SourceLang: "en", TargetLang: "es", TranslatedText: text, ServiceName: "libretranslate",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("SaveTranslation failed: %v", err)
		}
	}

	entries, err := s.ListHistory(ctx, 2)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].SourceText != "three" || entries[1].SourceText != "two" {
		t.Errorf("expected newest first, got %q, %q", entries[0].SourceText, entries[1].SourceText)
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []internal.TranslationRecord{
		{SourceText: "a", SourceLang: "en", TargetLang: "es", TranslatedText: "a", ServiceName: "libretranslate", Latency: 100 * time.Millisecond},
		{SourceText: "b", SourceLang: "en", TargetLang: "es", TranslatedText: "b", ServiceName: "mymemory", Latency: 300 * time.Millisecond, PrimaryError: "down"},
		{SourceText: "c", SourceLang: "en", TargetLang: "fr", TranslatedText: "c", ServiceName: "libretranslate", Latency: 200 * time.Millisecond},
	}
	for _, r := range records {
		if err := s.SaveTranslation(ctx, r); err != nil {
			t.Fatalf("SaveTranslation failed: %v", err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 3 {
		t.Errorf("expected 3 entries, got %d", stats.TotalEntries)
	}
	if stats.FallbackCount != 1 {
		t.Errorf("expected 1 fallback, got %d", stats.FallbackCount)
	}
	if stats.ByService["libretranslate"] != 2 || stats.ByService["mymemory"] != 1 {
		t.Errorf("unexpected per-service counts: %v", stats.ByService)
	}
	if stats.AvgLatency != 200*time.Millisecond {
		t.Errorf("expected 200ms average, got %v", stats.AvgLatency)
	}
}

func TestStore_Stats_Empty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 0 || stats.FallbackCount != 0 || stats.AvgLatency != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestStore_DeleteEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveTranslation(ctx, internal.TranslationRecord{
		ID: "entry-1", SourceText: "Hello", SourceLang: "en", TargetLang: "es", TranslatedText: "Hola", ServiceName: "libretranslate",
	}); err != nil {
		t.Fatalf("SaveTranslation failed: %v", err)
	}

	if err := s.DeleteEntry(ctx, "entry-1"); err != nil {
		t.Errorf("DeleteEntry failed: %v", err)
	}
	if err := s.DeleteEntry(ctx, "entry-1"); err == nil {
		t.Error("expected error deleting a missing entry")
	}

	entries, _ := s.ListHistory(ctx, 0)
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %d", len(entries))
	}
}

func TestStore_ClearHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two"} {
		s.SaveTranslation(ctx, internal.TranslationRecord{
			SourceText: text, SourceLang: "en", TargetLang: "es", TranslatedText: text, ServiceName: "libretranslate",
		})
	}

	n, err := s.ClearHistory(ctx)
	if err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
}

func TestNormalizeText(t *testing.T) {
	if got := normalizeText("  hello  "); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
}
