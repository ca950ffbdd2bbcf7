// Package logtail implements GET /console (SPEC_FULL.md §3 SUPPLEMENTAL
// FEATURES): a bounded in-memory tail of the engine's rolling log file,
// kept current via an fsnotify watch the way golang-tools' gopls
// filewatcher package watches source trees, simplified here to a single
// file and a line-bounded ring instead of a batched-event pipeline.
package logtail

import (
	"bufio"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dev-bridge/engine-runtime-bridge/internal/bridgelog"
)

// Tail keeps the last maxLines lines written to path, refreshed whenever
// fsnotify reports a write.
type Tail struct {
	mu    sync.Mutex
	path  string
	max   int
	lines []string
	size  int64 // bytes already scanned, so a reload only reads the new tail

	watcher *fsnotify.Watcher
	stop    chan struct{}
}

// New starts tailing path. If path is empty, the Tail stays permanently
// empty (no engine log configured) rather than erroring — GET /console
// should degrade to an empty buffer, not fail the whole bridge.
func New(path string, maxLines int) (*Tail, error) {
	t := &Tail{path: path, max: maxLines, stop: make(chan struct{})}
	if path == "" {
		return t, nil
	}

	t.reload()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		bridgelog.Bridge.Errorf("logtail: fsnotify unavailable, falling back to snapshot-only reads: %v", err)
		return t, nil
	}
	if err := w.Add(path); err != nil {
		bridgelog.Bridge.Errorf("logtail: watch %s failed: %v", path, err)
		w.Close()
		return t, nil
	}
	t.watcher = w
	go t.run()
	return t, nil
}

func (t *Tail) run() {
	for {
		select {
		case <-t.stop:
			return
		case ev, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
				t.reload()
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			bridgelog.Bridge.Errorf("logtail: watch error: %v", err)
		}
	}
}

// reload appends any bytes written since the last scan and re-bounds the
// line buffer to max.
func (t *Tail) reload() {
	f, err := os.Open(t.path)
	if err != nil {
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}

	t.mu.Lock()
	offset := t.size
	if info.Size() < offset {
		// log file rotated or truncated underneath us; start over.
		offset = 0
		t.lines = nil
	}
	t.mu.Unlock()

	if _, err := f.Seek(offset, 0); err != nil {
		return
	}

	var newLines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		newLines = append(newLines, scanner.Text())
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, newLines...)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
	t.size = info.Size()
}

// Lines returns a copy of the current tail, oldest first.
func (t *Tail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Close stops the watch goroutine.
func (t *Tail) Close() {
	close(t.stop)
	if t.watcher != nil {
		t.watcher.Close()
	}
}
