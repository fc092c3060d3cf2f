package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/felixgeelhaar/reflex-go/infrastructure/logging"
)

// Watcher watches a scenario file and invokes a callback when it changes.
// Editors often emit several write events per save, so changes are
// debounced before the callback fires.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(path string)
}

// NewWatcher creates a watcher for the given scenario file.
func NewWatcher(path string, onChange func(path string)) *Watcher {
	return &Watcher{
		path:     path,
		debounce: 250 * time.Millisecond,
		onChange: onChange,
	}
}

// Watch blocks, invoking the callback on changes, until the context is
// cancelled. The parent directory is watched rather than the file
// itself so atomic rename-style saves are seen.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fsw.Close() }()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return err
	}

	target, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			abs, err := filepath.Abs(ev.Name)
			if err != nil || abs != target {
				continue
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warn().
				Add(logging.Path(w.path)).
				Add(logging.ErrorField(err)).
				Msg("scenario watch error")

		case <-fire:
			logging.Debug().
				Add(logging.Path(w.path)).
				Msg("scenario file changed")
			w.onChange(w.path)
		}
	}
}
