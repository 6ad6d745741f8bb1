package engine

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// VanishWatcher lets waiters learn about a path being removed without
// waiting for their next poll tick. It watches the parent directory of each
// subscribed path and signals the subscriber on Remove or Rename events.
//
// The watcher is strictly an accelerator: waiters keep polling regardless,
// and any watcher failure degrades silently to pure polling.
type VanishWatcher struct {
	fw *fsnotify.Watcher

	mu   sync.Mutex
	subs map[string]chan struct{}
	dirs map[string]int

	done chan struct{}
}

// NewVanishWatcher creates a watcher and starts its event loop.
func NewVanishWatcher() (*VanishWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &VanishWatcher{
		fw:   fw,
		subs: make(map[string]chan struct{}),
		dirs: make(map[string]int),
		done: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *VanishWatcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			ch, ok := w.subs[ev.Name]
			w.mu.Unlock()
			if ok {
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Debug().Err(err).Msg("vanish watcher error")
		}
	}
}

// Subscribe registers interest in path being removed and returns a signal
// channel plus a cancel function. The channel receives (at least) one value
// when the path is removed or renamed away. If the parent directory cannot
// be watched, Subscribe returns a nil channel and the caller falls back to
// polling alone. One cycle dispatches at most one task per entry, so a
// single subscription per path suffices.
func (w *VanishWatcher) Subscribe(path string) (<-chan struct{}, func()) {
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dirs[dir] == 0 {
		if err := w.fw.Add(dir); err != nil {
			log.Debug().Err(err).Str("dir", dir).Msg("cannot watch directory, polling only")
			return nil, func() {}
		}
	}
	w.dirs[dir]++

	ch := make(chan struct{}, 1)
	w.subs[path] = ch

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs, path)
		w.dirs[dir]--
		if w.dirs[dir] <= 0 {
			delete(w.dirs, dir)
			_ = w.fw.Remove(dir)
		}
	}
	return ch, cancel
}

// Close stops the event loop and releases all watches.
func (w *VanishWatcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}
