package prompts

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultDebounce = time.Second

// Watcher reloads the store when the prompt file changes on disk.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	stopOnce sync.Once
	done     chan struct{}
}

func NewWatcher(store *Store) (*Watcher, error) {
	if store.Path() == "" {
		return nil, errors.New("prompt store has no file to watch")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	return &Watcher{
		store:    store,
		watcher:  w,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Start watches the directory of the prompt file, editors often replace files
// instead of writing them in place.
func (w *Watcher) Start(ctx context.Context) error {
	absPath, err := filepath.Abs(w.store.Path())
	if err != nil {
		return errors.Wrap(err, "failed to resolve prompt path")
	}

	dir := filepath.Dir(absPath)
	if err := w.watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", dir)
	}

	logrus.Infof("watching prompt pack %s", absPath)

	go w.loop(ctx, filepath.Base(absPath))

	return nil
}

func (w *Watcher) loop(ctx context.Context, fileName string) {
	var timer *time.Timer
	var fire <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			logrus.Debugf("prompt pack changed: %s", event)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			_, _ = w.store.Reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logrus.Errorf("prompt watcher error: %v", err)
		}
	}
}

func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})

	return err
}
