package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/biolinks/biolinks/pkg/config"
	"github.com/biolinks/biolinks/pkg/csv"
	"github.com/biolinks/biolinks/pkg/fetchers"
	"github.com/biolinks/biolinks/pkg/loggers"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	FileFetcherName string = "file"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

type document struct {
	fileInfo fs.FileInfo
	data     interface{}
}

// FileFetcher serves JSON and CSV documents from disk. The query is the
// document path. Decoded documents are kept until the file changes.
type FileFetcher struct {
	dir       string
	watch     bool
	watcher   *fsnotify.Watcher
	docs      map[string]*document
	dataMutex sync.RWMutex
}

func NewFileFetcher() *FileFetcher {
	return &FileFetcher{
		docs: make(map[string]*document),
	}
}

func (f *FileFetcher) Init(params map[string]string) error {
	f.dir = params["dir"]
	if f.dir == "" {
		f.dir = config.AppPath()
	}

	f.watch = params["watch"] != "false"
	if f.watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("error starting file watcher: %w", err)
		}
		f.watcher = watcher
		go f.watchPaths()
	}

	return nil
}

func (f *FileFetcher) Kind() fetchers.Kind {
	return fetchers.QueryStringKind
}

func (f *FileFetcher) Fetch(ctx context.Context, query string, variables map[string]interface{}) (interface{}, error) {
	path := strings.TrimSpace(query)
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.dir, path)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	newFileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", filepath.Base(path), err)
	}

	f.dataMutex.RLock()
	doc, ok := f.docs[path]
	f.dataMutex.RUnlock()

	// Only load the file if it's changed since last read
	if ok && !newFileInfo.ModTime().After(doc.fileInfo.ModTime()) {
		return doc.data, nil
	}

	return f.loadFileData(path, newFileInfo)
}

func (f *FileFetcher) Close() error {
	if f.watcher == nil {
		return nil
	}
	return f.watcher.Close()
}

func (f *FileFetcher) loadFileData(path string, newFileInfo fs.FileInfo) (interface{}, error) {
	loadStartTime := time.Now()

	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", filepath.Base(path), err)
	}

	data, err := decodeDocument(path, fileData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file '%s': %w", filepath.Base(path), err)
	}

	f.dataMutex.Lock()
	_, known := f.docs[path]
	f.docs[path] = &document{fileInfo: newFileInfo, data: data}
	f.dataMutex.Unlock()

	if !known && f.watcher != nil {
		if err := f.watcher.Add(path); err != nil {
			zaplog.Sugar().Warnf("error watching '%s': %s", path, err.Error())
		}
	}

	zaplog.Sugar().Debugf("loaded file '%s' in %.2f seconds", filepath.Base(path), time.Since(loadStartTime).Seconds())

	return data, nil
}

// decodeDocument returns the rows of a CSV file, or the decoded JSON document.
// A JSON object with a "rows" member yields just the rows.
func decodeDocument(path string, fileData []byte) (interface{}, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return csv.ProcessCsv(bytes.NewReader(fileData))
	}

	var raw interface{}
	if err := json.Unmarshal(fileData, &raw); err != nil {
		return nil, err
	}

	if obj, ok := raw.(map[string]interface{}); ok {
		if rows, ok := obj["rows"]; ok {
			return rows, nil
		}
	}
	return raw, nil
}

func (f *FileFetcher) watchPaths() {
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			f.processWatchNotifyEvent(event)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			zaplog.Sugar().Warnf("file watcher error: %s", err.Error())
		}
	}
}

func (f *FileFetcher) processWatchNotifyEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	f.dataMutex.Lock()
	defer f.dataMutex.Unlock()

	if _, ok := f.docs[event.Name]; ok {
		delete(f.docs, event.Name)
		zaplog.Sugar().Debugf("'%s' changed, dropping cached document", filepath.Base(event.Name))
	}
}
