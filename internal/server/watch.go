package server

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/pagewatch/pagewatch/internal/config"
)

// watchConfig reloads the config when its file changes. Editors often
// replace the file (rename) rather than writing in place, so the parent
// directory is watched and events filtered by name.
func (s *Server) watchConfig(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Error("config_watch_failed", "error", err)
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(s.cfgPath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error("config_watch_failed", "dir", dir, "error", err)
		return
	}
	s.logger.Info("config_watch_started", "path", s.cfgPath)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.cfgPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.reloadConfig()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("config_watch_error", "error", err)
		}
	}
}

func (s *Server) reloadConfig() {
	cfg, err := config.Load(s.cfgPath)
	if err != nil {
		// Keep serving the last good config; a broken edit shouldn't take
		// the server down.
		s.logger.Error("config_reload_failed", "path", s.cfgPath, "error", err)
		return
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.logger.Info("config_reloaded", "path", s.cfgPath, "pages", len(cfg.Pages))
}
