// Package watch runs a callback each time a file changes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"src.xs.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[watch] ")

// DefaultDelay is how long Watch waits for a burst of changes to settle
// before reloading.
const DefaultDelay = 100 * time.Millisecond

// Watch calls run with the content of the file at path, then again each time
// the file is written or recreated, until ctx is done. Changes that happen
// within delay of each other cause a single reload.
//
// The directory containing the file is watched rather than the file itself,
// so that editors that save by renaming a new file over the old one are
// followed.
func Watch(ctx context.Context, path string, delay time.Duration, run func(code string, err error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	reload := func() {
		data, err := os.ReadFile(abs)
		run(string(data), err)
	}
	reload()

	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Println("changed:", ev)
			timer.Reset(delay)
		case <-timer.C:
			reload()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Println("watch error:", err)
		}
	}
}
