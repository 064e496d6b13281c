package ui

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/lectify/lectify/lecture"
)

// watchLecture reloads the document whenever the file changes. Editors save
// in bursts (truncate, write, rename), so events are debounced before the
// file is re-read. Runs until the watcher fails or the process exits.
func watchLecture(path string, r *relay) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()

		var debounce *time.Timer
		reload := func() {
			src, err := os.ReadFile(path)
			if err != nil {
				log.Warn("unable to re-read lecture", "path", path, "err", err)
				return
			}
			lec, err := lecture.Parse(src)
			if err != nil {
				log.Warn("changed lecture did not parse", "path", path, "err", err)
				return
			}
			segments := lecture.NewSegmenter().Segment(lec.Items)
			r.send(lectureReloadedMsg{lec: lec, segments: segments})
		}

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if ev.Op&fsnotify.Rename != 0 {
					// Atomic save replaced the file; re-arm the watch.
					_ = w.Add(path)
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(100*time.Millisecond, reload)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("lecture watch error", "err", err)
			}
		}
	}()

	return nil
}
