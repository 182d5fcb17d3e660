package prism

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/zoobzio/capitan"
)

// WatchFile returns an observable of the file's raw contents. The current
// contents are read before WatchFile returns, so the observable has its
// initial value immediately; afterwards the file is re-read on every write
// or create event until ctx is canceled, at which point the observable
// completes. Transient read failures are skipped and the last successful
// read remains the value.
func WatchFile(ctx context.Context, path string) (Observable[[]byte], error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch file %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	m := NewMutable(data)
	capitan.Emit(ctx, FileWatchStarted, KeyPath.Field(path))

	go func() {
		defer watcher.Close()
		defer m.Close()
		defer capitan.Emit(ctx, FileWatchStopped, KeyPath.Field(path))

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					continue
				}
				m.Set(data)

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Keep watching despite errors.
			}
		}
	}()

	return Capture[[]byte](m), nil
}

// WatchFileAs watches path and decodes its contents through codec into T.
// The initial contents must decode; afterwards contents that fail to decode
// are skipped and the last good value retained, so a half-written file
// never becomes the observable's value.
func WatchFileAs[T any](ctx context.Context, path string, codec Codec) (Observable[T], error) {
	raw, err := WatchFile(ctx, path)
	if err != nil {
		return nil, err
	}

	var first T
	if err := codec.Unmarshal(raw.Value(), &first); err != nil {
		return nil, fmt.Errorf("failed to decode file %s: %w", path, err)
	}

	return newComposed(NewProducer(func(emit Observer[T], lifetime *Lifetime) {
		emit.Send(first)
		d := raw.Signal().Observe(func(e Event[[]byte]) {
			if e.IsTerminal() {
				emit(terminal[T](e.Kind))
				return
			}
			var v T
			if err := codec.Unmarshal(e.Value, &v); err != nil {
				capitan.Emit(ctx, FileDecodeFailed,
					KeyPath.Field(path),
					KeyError.Field(err.Error()),
				)
				return
			}
			emit.Send(v)
		})
		lifetime.OnEnded(d.Dispose)
	})), nil
}
