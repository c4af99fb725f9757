package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/braces/internal/core"
	"github.com/standardbeagle/braces/internal/debug"
)

// EventType represents the kind of change that triggered a re-check
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	}
	return "unknown"
}

// Event is delivered to the handler once per changed file after debouncing.
// Report is nil for removals and when the file could not be checked.
type Event struct {
	Path   string // relative to the watched root, slash-separated
	Type   EventType
	Report *core.FileReport
	Err    error
}

// Handler receives re-check results. It is called from a single goroutine.
type Handler func(Event)

// Watcher re-checks files under a root as they change on disk.
type Watcher struct {
	watcher   *fsnotify.Watcher
	engine    *core.Engine
	filter    *core.FileFilter
	root      string
	debouncer *eventDebouncer
	handler   Handler
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once

	eventsProcessed int64
	errorCount      int64
	lastEventTime   time.Time
	statsMu         sync.RWMutex
}

// New creates a watcher for root. Nothing is watched until Start.
func New(engine *core.Engine, root string, handler Handler) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	filter, err := engine.NewFileFilter(abs)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher: fsw,
		engine:  engine,
		filter:  filter,
		root:    abs,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}
	w.debouncer = newEventDebouncer(time.Duration(engine.Config().Watch.DebounceMs)*time.Millisecond, w.flush)
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Start adds watches for every directory the filter keeps and begins
// processing events.
func (w *Watcher) Start() error {
	debug.LogWatch("starting watcher for %s", w.root)

	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.root, err)
	}

	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop stops watching. Pending debounced events are dropped. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.cancel()
		err = w.watcher.Close()
		w.wg.Wait()
		w.debouncer.stop()
		debug.LogWatch("watcher for %s stopped", w.root)
	})
	return err
}

// addWatches recursively adds watches to all relevant directories
func (w *Watcher) addWatches(root string) error {
	// Track visited directories to prevent infinite loops from symlink cycles
	visited := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return filepath.SkipDir
		}
		if visited[realPath] {
			return filepath.SkipDir
		}
		visited[realPath] = true

		if rel, ok := w.filter.Rel(path); !ok || w.filter.SkipDir(rel) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

// processEvents processes file system events from fsnotify
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
			w.incrementStats(0, 1)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogWatch("received %v for %s", event.Op, path)

	rel, ok := w.filter.Rel(path)
	if !ok {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// Gone: removed, or renamed away.
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.shouldProcess(rel) {
			w.debouncer.addEvent(rel, EventRemove)
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.filter.SkipDir(rel) {
			if err := w.addWatches(path); err != nil {
				log.Printf("Warning: failed to add watch for new directory %s: %v", path, err)
			}
		}
		return
	}

	if !w.shouldProcess(rel) {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = EventCreate
	case event.Op&fsnotify.Write != 0:
		eventType = EventWrite
	case event.Op&fsnotify.Rename != 0:
		eventType = EventRename
	default:
		return
	}
	w.debouncer.addEvent(rel, eventType)
}

// shouldProcess reports whether rel passes the filter and has a language.
func (w *Watcher) shouldProcess(rel string) bool {
	if !w.filter.Accept(rel) {
		return false
	}
	_, err := w.engine.Registry().ForPath(rel)
	return err == nil
}

// flush re-checks a debounced batch. Removals go first, then the rest in
// path order.
func (w *Watcher) flush(batch map[string]EventType) {
	paths := make([]string, 0, len(batch))
	for p := range batch {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		ri, rj := batch[paths[i]] == EventRemove, batch[paths[j]] == EventRemove
		if ri != rj {
			return ri
		}
		return paths[i] < paths[j]
	})

	debug.LogWatch("processing %d debounced events", len(paths))
	for _, rel := range paths {
		if w.ctx.Err() != nil {
			return
		}
		abs := filepath.Join(w.root, filepath.FromSlash(rel))
		w.engine.Invalidate(abs)

		ev := Event{Path: rel, Type: batch[rel]}
		var errs int64
		if ev.Type != EventRemove {
			report, err := w.engine.CheckFile(w.ctx, abs)
			if err != nil {
				ev.Err = err
				errs = 1
			} else {
				report.Path = rel
				ev.Report = report
			}
		}
		w.incrementStats(1, errs)
		if w.handler != nil {
			w.handler(ev)
		}
	}
}

// incrementStats updates watch statistics
func (w *Watcher) incrementStats(events, errors int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.eventsProcessed += events
	w.errorCount += errors
	w.lastEventTime = time.Now()
}

// Stats contains statistics about the watch session
type Stats struct {
	EventsProcessed int64     `json:"events_processed"`
	ErrorCount      int64     `json:"error_count"`
	LastEventTime   time.Time `json:"last_event_time"`
	IsActive        bool      `json:"is_active"`
}

// GetStats returns current watch statistics
func (w *Watcher) GetStats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	return Stats{
		EventsProcessed: w.eventsProcessed,
		ErrorCount:      w.errorCount,
		LastEventTime:   w.lastEventTime,
		IsActive:        w.ctx.Err() == nil,
	}
}
