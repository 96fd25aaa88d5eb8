package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nguyentantai21042004/caption-extract/internal/logger"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	seen  chan string
}

func newRecorder() *recorder {
	return &recorder{seen: make(chan string, 16)}
}

func (r *recorder) handle(ctx context.Context, path string) error {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.seen <- path
	return nil
}

func (r *recorder) wait(t *testing.T, n int) []string {
	t.Helper()
	var got []string
	timeout := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case p := <-r.seen:
			got = append(got, p)
		case <-timeout:
			t.Fatalf("handled %v, want %d files", got, n)
		}
	}
	sort.Strings(got)
	return got
}

func startWatcher(t *testing.T, dir string, handler EventHandler, opts Options) (context.CancelFunc, chan error) {
	t.Helper()
	w, err := New(dir, handler, logger.Nop(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	return cancel, done
}

func TestWatcherHandlesNewAndWaitingVideos(t *testing.T) {
	dir := t.TempDir()
	waiting := filepath.Join(dir, "waiting.mkv")
	if err := os.WriteFile(waiting, []byte("v"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := newRecorder()
	cancel, done := startWatcher(t, dir, rec.handle, Options{MaxConcurrent: 2, Settle: 10 * time.Millisecond})

	if got := rec.wait(t, 1); got[0] != waiting {
		t.Fatalf("first handled = %v, want %s", got, waiting)
	}

	fresh := filepath.Join(dir, "fresh.MP4")
	if err := os.WriteFile(fresh, []byte("v"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.srt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := rec.wait(t, 1); got[0] != fresh {
		t.Fatalf("handled = %v, want %s", got, fresh)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start = %v, want context.Canceled", err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.paths) != 2 {
		t.Errorf("handled %v, want only the two videos", rec.paths)
	}
}

func TestWatcherLock(t *testing.T) {
	dir := t.TempDir()
	lock := filepath.Join(t.TempDir(), "watch.lock")
	noop := func(ctx context.Context, path string) error { return nil }

	cancel, done := startWatcher(t, dir, noop, Options{LockPath: lock})
	defer cancel()

	// Give the first watcher time to take the lock.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(lock); err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	second, err := New(dir, noop, logger.Nop(), Options{LockPath: lock})
	if err != nil {
		t.Fatal(err)
	}
	defer second.Stop()
	if err := second.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start = %v, want ErrAlreadyRunning", err)
	}

	cancel()
	<-done
}

func newDispatcher(limit int, handler EventHandler) *implWatcher {
	return &implWatcher{
		handler:       handler,
		logger:        logger.Nop(),
		maxConcurrent: limit,
		sem:           semaphore.NewWeighted(int64(limit)),
		inFlight:      make(map[string]bool),
	}
}

func TestDispatchLimitsConcurrency(t *testing.T) {
	var mu sync.Mutex
	running, peak, handled := 0, 0, 0
	w := newDispatcher(2, func(ctx context.Context, path string) error {
		mu.Lock()
		running++
		peak = max(peak, running)
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		running--
		handled++
		mu.Unlock()
		return nil
	})

	for i := range 6 {
		if err := w.dispatch(context.Background(), filepath.Join("in", string(rune('a'+i))+".mp4")); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}
	w.wg.Wait()

	if handled != 6 {
		t.Errorf("handled %d videos, want 6", handled)
	}
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak)
	}
}

func TestDispatchCanceledWhileFull(t *testing.T) {
	release := make(chan struct{})
	w := newDispatcher(1, func(ctx context.Context, path string) error {
		<-release
		return nil
	})
	if err := w.dispatch(context.Background(), "first.mp4"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.dispatch(ctx, "second.mp4"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("dispatch on full watcher = %v, want DeadlineExceeded", err)
	}
	w.mu.Lock()
	stuck := w.inFlight["second.mp4"]
	w.mu.Unlock()
	if stuck {
		t.Error("canceled path still marked in flight")
	}

	close(release)
	w.wg.Wait()
	if err := w.dispatch(context.Background(), "second.mp4"); err != nil {
		t.Errorf("dispatch after release = %v", err)
	}
	w.wg.Wait()
}

func TestIsVideoFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a.mp4": true, "b.MKV": true, "c.webm": true, "d.srt": false, "e": false, "f.mp4.part": false,
	} {
		if got := isVideoFile(path); got != want {
			t.Errorf("isVideoFile(%q) = %v, want %v", path, got, want)
		}
	}
}
