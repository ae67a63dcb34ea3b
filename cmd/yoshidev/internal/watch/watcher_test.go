package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Action: func([]string) (string, string, error) { return "", "", nil }}); err == nil {
		t.Error("expected error without files")
	}
	if _, err := New(Config{Files: []string{"src/version.txt"}}); err == nil {
		t.Error("expected error without action")
	}
}

// syncBuffer guards a bytes.Buffer shared with the watch goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestWatcher_RunsActionOnChange(t *testing.T) {
	dir := t.TempDir()
	version := filepath.Join(dir, "version.txt")
	other := filepath.Join(dir, "unrelated.txt")
	if err := os.WriteFile(version, []byte("2.3.3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	runs := make(chan []string, 4)
	w, err := New(Config{
		Files:    []string{version},
		Debounce: 20 * time.Millisecond,
		Logger:   NewLogger(LoggerConfig{Writer: &syncBuffer{}}),
		Action: func(changed []string) (string, string, error) {
			runs <- changed
			return "index.html", "", nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register its directories.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(other, []byte("noise\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(version, []byte("2.3.4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-runs:
		abs, _ := filepath.Abs(version)
		if len(changed) != 1 || changed[0] != abs {
			t.Errorf("action got %v, want [%s]", changed, abs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("action did not run after version file change")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
