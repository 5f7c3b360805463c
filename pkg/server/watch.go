package server

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay lets editors finish writing before the file is parsed.
const reloadDelay = 200 * time.Millisecond

// WatchVerbs starts an fsnotify watcher on the directory of the vocabulary
// file and reloads the verb table when the file changes. A reload that
// fails is logged and the old table stays active. onReload, if not nil, is
// called after every attempt. The watcher stops when ctx is done.
func (g *Game) WatchVerbs(ctx context.Context, onReload func(error)) error {
	if g.Conf.VerbsFile == "" {
		return fmt.Errorf("no vocabulary file to watch")
	}
	path, err := filepath.Abs(g.Conf.VerbsFile)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting verb watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer watcher.Close()
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				pending = time.After(reloadDelay)
			case <-pending:
				pending = nil
				err := g.ReloadVerbs()
				if err != nil {
					log.Printf("verbs: reload of %s failed, keeping the current table: %v", path, err)
				} else {
					log.Printf("verbs: reloaded %s", path)
				}
				if onReload != nil {
					onReload(err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("verbs: watcher error: %v", err)
			}
		}
	}()

	log.Printf("verbs: watching %s for changes", path)
	return nil
}
