// Package filesystem provides a Connector that crawls a local directory tree.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// mimeByExtension maps allow-listed extensions to MIME types used for
// normaliser dispatch. The format set is closed.
var mimeByExtension = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".mp3":  "audio/mpeg",
}

// DefaultExtensions is the default crawl allow-list.
func DefaultExtensions() []string {
	return []string{".txt", ".md", ".pdf", ".docx", ".mp3"}
}

// Connector crawls a directory tree and emits eligible files as raw
// documents. A directory is skipped entirely, along with its descendants,
// when its path contains any exclusion pattern as a substring.
type Connector struct {
	rootPath   string
	exclusions []string
	extensions map[string]struct{}
}

// New creates a filesystem connector for the given root.
// Extensions are lowercased; an empty list falls back to the defaults.
func New(rootPath string, exclusions []string, extensions []string) *Connector {
	if len(extensions) == 0 {
		extensions = DefaultExtensions()
	}
	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[ext] = struct{}{}
	}
	return &Connector{
		rootPath:   rootPath,
		exclusions: exclusions,
		extensions: extSet,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// Validate checks the root path exists and is readable.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s: %w", c.rootPath, domain.ErrInvalidInput)
	}
	return nil
}

// FullCrawl walks the tree once and streams every eligible file.
// Per-file read failures are reported as *domain.ExtractionError on the
// error channel and do not stop the walk.
func (c *Connector) FullCrawl(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		walkErr := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				// Unreadable entry: record and keep walking siblings.
				errs <- &domain.ExtractionError{Path: path, Err: err}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if c.excluded(path) {
					logger.Debug("Excluding subtree: %s", path)
					return filepath.SkipDir
				}
				return nil
			}

			if !c.eligible(path) {
				return nil
			}

			raw, err := c.readFile(path, d)
			if err != nil {
				errs <- &domain.ExtractionError{Path: path, Err: err}
				return nil
			}

			select {
			case docs <- *raw:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if walkErr != nil && ctx.Err() == nil {
			errs <- fmt.Errorf("walk %s: %w", c.rootPath, walkErr)
		}
	}()

	return docs, errs
}

// Watch reports coalesced change events under the root until ctx is
// cancelled. Every non-excluded directory is watched; events within a
// debounce window collapse into one notification.
func (c *Connector) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable subtrees are simply not watched
		}
		if !d.IsDir() {
			return nil
		}
		if c.excluded(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}

	changes := make(chan struct{}, 1)

	go func() {
		defer watcher.Close()
		defer close(changes)

		const debounce = 2 * time.Second
		var timer *time.Timer
		var timerC <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if c.excluded(event.Name) {
					continue
				}
				logger.Debug("Change detected: %s", event.Name)
				if timer == nil {
					timer = time.NewTimer(debounce)
					timerC = timer.C
				} else {
					resetDebounce(timer, timerC, debounce)
				}

			case <-timerC:
				timer = nil
				timerC = nil
				select {
				case changes <- struct{}{}:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()

	return changes, nil
}

// resetDebounce restarts the debounce timer. A timer that already fired
// leaves its tick in the channel; the tick is drained first so the reset
// timer does not deliver a premature notification.
func resetDebounce(timer *time.Timer, timerC <-chan time.Time, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timerC:
		default:
		}
	}
	timer.Reset(d)
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// excluded reports whether the path contains any exclusion pattern.
func (c *Connector) excluded(path string) bool {
	for _, pattern := range c.exclusions {
		if pattern != "" && strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// eligible reports whether the file's lowercased extension is allow-listed.
func (c *Connector) eligible(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := c.extensions[ext]
	return ok
}

// readFile loads the file into a RawDocument.
func (c *Connector) readFile(path string, d fs.DirEntry) (*domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	modTime := time.Time{}
	if info, err := d.Info(); err == nil {
		modTime = info.ModTime()
	}

	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := mimeByExtension[ext]
	if !ok {
		mimeType = "application/octet-stream"
	}

	return &domain.RawDocument{
		Path:     path,
		MIMEType: mimeType,
		Content:  content,
		ModTime:  modTime,
		Metadata: map[string]any{"extension": ext},
	}, nil
}
