package runtime

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

type configWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// watchConfig calls reload whenever a YAML file in dir is written or created.
func watchConfig(dir string, reload func() error) (*configWatcher, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0766); err != nil {
			return nil, err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error starting '%s' watcher: %w", dir, err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("error starting '%s' watcher: %w", dir, err)
	}

	w := &configWatcher{
		dir:     dir,
		watcher: watcher,
		done:    make(chan struct{}),
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isConfigChange(event) {
					continue
				}
				if err := reload(); err != nil {
					log.Println(err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Println(fmt.Errorf("error from '%s' watcher: %w", dir, err))
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

func isConfigChange(event fsnotify.Event) bool {
	ext := filepath.Ext(event.Name)
	if ext != ".yml" && ext != ".yaml" {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *configWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
