package speech

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// LineRecognizer treats each line read from r as one spoken utterance.
// A line ending in "..." is reported as an interim hypothesis and the
// session keeps reading.
//
// One reader goroutine feeds lines to whichever session is running, so a
// cancelled session neither holds the recognizer nor swallows input.
type LineRecognizer struct {
	r        io.Reader
	readOnce sync.Once
	lines    chan string
	readErr  error // valid once lines is closed

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	busy    bool
	pending *string
}

func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{r: r, lines: make(chan string)}
}

func (l *LineRecognizer) read() {
	scanner := bufio.NewScanner(l.r)
	for scanner.Scan() {
		l.lines <- scanner.Text()
	}
	l.readErr = scanner.Err()
	close(l.lines)
}

func (l *LineRecognizer) Start(ctx context.Context, locale string, listener Listener) error {
	l.mu.Lock()
	if l.busy {
		l.mu.Unlock()
		return &RecognitionError{Kind: ErrorRecognizerBusy}
	}
	l.busy = true
	ctx, l.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	l.done = done
	l.mu.Unlock()

	l.readOnce.Do(func() { go l.read() })

	go func() {
		deliver := l.run(ctx, listener)
		l.mu.Lock()
		l.busy = false
		l.cancel()
		l.mu.Unlock()
		close(done)
		deliver()
	}()
	return nil
}

// next returns the next line, one held back by a cancelled session first.
func (l *LineRecognizer) next(ctx context.Context) (string, bool, error) {
	if l.pending != nil {
		line := *l.pending
		l.pending = nil
		return line, true, nil
	}
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case line, ok := <-l.lines:
		if ok && ctx.Err() != nil {
			l.pending = &line
			return "", false, ctx.Err()
		}
		return line, ok, nil
	}
}

// run reads until the session ends. Partial hypotheses are delivered as they
// arrive; the final event is returned so it fires after the recognizer is
// free for the next session.
func (l *LineRecognizer) run(ctx context.Context, listener Listener) func() {
	for {
		raw, ok, err := l.next(ctx)
		if err != nil {
			return func() { listener.OnError(&RecognitionError{Kind: ErrorClient, Err: err}) }
		}
		if !ok {
			break
		}
		line := strings.TrimSpace(raw)
		if partial, ok := strings.CutSuffix(line, "..."); ok && partial != "" {
			listener.OnPartial(partial)
			continue
		}
		if line == "" {
			return func() { listener.OnError(&RecognitionError{Kind: ErrorNoMatch}) }
		}
		return func() { listener.OnResult(line) }
	}

	err := l.readErr
	if err == nil {
		err = io.EOF
	}
	kind := ErrorClient
	if errors.Is(err, bufio.ErrTooLong) {
		kind = ErrorAudio
	}
	return func() { listener.OnError(&RecognitionError{Kind: kind, Err: err}) }
}

// Stop cancels the running session and waits until the recognizer is free.
// It must not be called from a Listener callback.
func (l *LineRecognizer) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
