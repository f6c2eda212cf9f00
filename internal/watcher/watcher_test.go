package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcher_CoalescesChanges(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	calls := 0
	onChange := func() {
		mu.Lock()
		calls++
		mu.Unlock()
	}

	w := New(dir, []string{".txt"}, onChange, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, "doc.txt")
		if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := calls
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 coalesced callback, got %d", calls)
	}
}

func TestWatcher_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	calls := 0
	w := New(dir, []string{".md"}, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "skip.tmp"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("expected no callbacks for filtered extension, got %d", calls)
	}
}

func TestWatcher_StartStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, nil, func() {})

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
