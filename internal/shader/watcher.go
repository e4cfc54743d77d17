package shader

import (
	"path/filepath"

	"Arbor3D/internal/logger"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher turns on-disk shader edits into program reloads. fsnotify events
// arrive on a background goroutine and are only buffered there; Poll drains
// them on the rendering thread and marks the owning programs stale, so all
// program mutation stays on the single thread the rest of the system
// assumes. The reload itself then happens inside the next MaybeReload.
type Watcher struct {
	fsw      *fsnotify.Watcher
	events   chan string
	programs map[string][]*Program
}

func NewWatcher(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		events:   make(chan string, 64),
		programs: make(map[string][]*Program),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.events <- filepath.Base(ev.Name):
			default:
				// buffer full; the pending events already force a reload
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("shader watcher error", zap.Error(err))
		}
	}
}

// Watch registers a program's file-based shader objects. Inline objects have
// no on-disk source and are skipped.
func (w *Watcher) Watch(p *Program) {
	for _, so := range p.objects {
		if so.inline() {
			continue
		}
		w.programs[so.srcData] = append(w.programs[so.srcData], p)
	}
}

// Poll marks programs whose sources changed as stale and returns how many
// were marked. Rendering thread only; call once per frame.
func (w *Watcher) Poll() int {
	marked := 0
	for {
		select {
		case name := <-w.events:
			for _, p := range w.programs[name] {
				p.MarkStale()
				marked++
			}
		default:
			return marked
		}
	}
}

func (w *Watcher) Close() error { return w.fsw.Close() }
