package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	w := &Watcher{files: map[string]bool{"index.html": true, "core.js": true}}

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"manifest write", fsnotify.Event{Name: "/web/index.html", Op: fsnotify.Write}, true},
		{"manifest create", fsnotify.Event{Name: "/web/core.js", Op: fsnotify.Create}, true},
		{"manifest remove", fsnotify.Event{Name: "/web/index.html", Op: fsnotify.Remove}, true},
		{"unrelated file", fsnotify.Event{Name: "/web/notes.txt", Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: "/web/index.html", Op: fsnotify.Chmod}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := w.relevant(tc.event)
			if result != tc.expected {
				t.Errorf("relevant(%v) = %v, want %v", tc.event, result, tc.expected)
			}
		})
	}
}

func TestRunRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	rebuilt := make(chan struct{}, 8)

	w, err := New(dir, map[string]bool{"index.html": true}, 20*time.Millisecond, func() error {
		rebuilt <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-rebuilt:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild within 5s of a manifest file change")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	rebuilt := make(chan struct{}, 8)

	w, err := New(dir, map[string]bool{"index.html": true}, 20*time.Millisecond, func() error {
		rebuilt <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-rebuilt:
		t.Fatal("rebuild triggered by a file outside the manifest")
	case <-time.After(300 * time.Millisecond):
	}
}
