package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
)

// settleTime is how long a changed image must stay unchanged before it is
// read, so that a file being written is not loaded half done.
const settleTime = 100 * time.Millisecond

// watchImage sends the contents of the named file on images whenever it
// changes, until ctx is done.
func watchImage(ctx context.Context, name string, images chan<- []byte) error {
	name = filepath.Clean(name)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Watch(filepath.Dir(name)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		var settled <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case <-settled:
				settled = nil
				image, err := os.ReadFile(name)
				if err != nil {
					log.Printf("watch: %v", err)
					break
				}
				log.Printf("watch: %s changed", filepath.Base(name))
				select {
				case images <- image:
				case <-ctx.Done():
					return
				}
			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == name && !ev.IsAttrib() && !ev.IsDelete() {
					settled = time.After(settleTime)
				}
			case err := <-watcher.Error:
				log.Printf("watch: %v", err)
			}
		}
	}()
	return nil
}
