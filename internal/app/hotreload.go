package app

import (
	"context"
	"errors"
	"log"
	"os"
	"slices"
	"sync"
	"time"
)

// FileWatcher polls a set of files and triggers a callback when any of them
// is modified. A change is reported once the modification times have been
// stable for one tick.
type FileWatcher struct {
	mu            sync.Mutex
	paths         []string
	baseline      map[string]time.Time
	pending       map[string]bool
	checkInterval time.Duration
	stopCh        chan struct{}
	onChange      func(changed []string) // Called with the files that changed
}

// NewFileWatcher creates a watcher for paths. Missing files are watched for
// creation.
func NewFileWatcher(checkInterval time.Duration, paths ...string) *FileWatcher {
	w := &FileWatcher{
		paths:         paths,
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
	}
	w.ResetBaseline()
	return w
}

// OnChange sets the callback to invoke when a change is detected.
// The callback is called from a background goroutine.
func (w *FileWatcher) OnChange(callback func(changed []string)) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// SetPaths replaces the watched files and resets the baseline.
func (w *FileWatcher) SetPaths(paths ...string) {
	w.mu.Lock()
	w.paths = paths
	w.mu.Unlock()
	w.ResetBaseline()
}

// Start begins watching in a background goroutine.
func (w *FileWatcher) Start() {
	// Create a fresh stop channel in case we're restarting
	w.stopCh = make(chan struct{})
	go w.watchLoop()
}

// Stop stops the watcher goroutine.
func (w *FileWatcher) Stop() {
	close(w.stopCh)
}

// watchLoop periodically checks the watched files.
func (w *FileWatcher) watchLoop() {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if changed := w.Poll(); len(changed) > 0 {
				w.mu.Lock()
				cb := w.onChange
				w.mu.Unlock()
				if cb != nil {
					cb(changed)
				}
			}
		}
	}
}

// Poll compares modification times against the baseline and returns the
// files whose change has settled: the first poll that sees a new time only
// marks the file as pending.
func (w *FileWatcher) Poll() []string {
	current := w.modTimes()

	w.mu.Lock()
	defer w.mu.Unlock()

	moving := false
	for p, t := range current {
		if !t.Equal(w.baseline[p]) {
			w.pending[p] = true
			moving = true
		}
	}
	if moving {
		w.baseline = current
		return nil
	}

	if len(w.pending) == 0 {
		return nil
	}
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	slices.Sort(changed)
	w.pending = make(map[string]bool)
	return changed
}

// ResetBaseline records the current modification times as unchanged.
func (w *FileWatcher) ResetBaseline() {
	current := w.modTimes()
	w.mu.Lock()
	w.baseline = current
	w.pending = make(map[string]bool)
	w.mu.Unlock()
}

func (w *FileWatcher) modTimes() map[string]time.Time {
	w.mu.Lock()
	paths := append([]string(nil), w.paths...)
	w.mu.Unlock()

	times := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			times[p] = info.ModTime()
		} else {
			times[p] = time.Time{}
		}
	}
	return times
}

// Watch reprocesses the session whenever its job file or input image
// changes, until ctx is cancelled. Each successful run is saved. When the job
// was never written to disk, only the input image is watched for changes.
func (s *Session) Watch(ctx context.Context, interval time.Duration) error {
	s.mu.RLock()
	jobPath := s.JobPath
	f := s.Job
	s.mu.RUnlock()
	if f == nil {
		return errors.New("no job loaded")
	}

	input := f.InputPath(jobPath)
	w := NewFileWatcher(interval, jobPath, input)
	changes := make(chan []string, 1)
	w.OnChange(func(changed []string) {
		select {
		case changes <- changed:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	log.Printf("Watching %s", jobPath)
	for {
		var changed []string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case changed = <-changes:
		}

		inputChanged := slices.Contains(changed, input)
		switch {
		case slices.Contains(changed, jobPath) && fileExists(jobPath):
			if err := s.ReloadJob(inputChanged); err != nil {
				log.Printf("Reload failed, keeping previous job: %v", err)
				continue
			}
			s.mu.RLock()
			input = s.Job.InputPath(s.JobPath)
			s.mu.RUnlock()
			w.SetPaths(jobPath, input)
		case inputChanged:
			// Jobs built in memory have no file to reload.
			if err := s.LoadSource(input); err != nil {
				log.Printf("Reload failed, keeping previous image: %v", err)
				continue
			}
		default:
			continue
		}

		if _, err := s.Process(ctx); err != nil {
			if !errors.Is(err, ErrSuperseded) {
				log.Printf("Processing failed: %v", err)
			}
			continue
		}
		if err := s.SaveResult(); err != nil {
			log.Printf("Save failed: %v", err)
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
