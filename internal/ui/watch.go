package ui

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/leapview/internal/ui/resources"
)

const assetDebounce = 100 * time.Millisecond

// watchAssets reloads open dev tabs after a stylesheet or script changes.
// A directory that cannot be watched only disables reloading.
func (s *Server) watchAssets(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start asset watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := s.cfg.WatchDir
	if dir == "" {
		dir = resources.StaticDirectoryPath
	}
	if err := watchDirRecursive(watcher, dir); err != nil {
		s.logger.Warn("asset reload disabled", slog.String("path", dir), slog.String("error", err.Error()))
		<-ctx.Done()
		return nil
	}
	s.logger.Debug("watching assets", slog.String("path", dir))

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			switch filepath.Ext(event.Name) {
			case ".css", ".js":
			default:
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			name := event.Name
			debounce = time.AfterFunc(assetDebounce, func() {
				s.logger.Debug("asset changed", slog.String("file", name))
				s.triggerReload()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("asset watcher error", slog.String("error", err.Error()))
		}
	}
}

func (s *Server) triggerReload() {
	select {
	case s.reload <- struct{}{}:
	default:
	}
}

func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
