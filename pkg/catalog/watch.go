// pkg/catalog/watch.go
package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"headline-generator/internal/common/logger"
	"headline-generator/internal/models"
)

// Loader receives a freshly parsed template set.
type Loader interface {
	Load(templates []models.Template) error
}

const debounce = 100 * time.Millisecond

// Watch reloads the catalog at path into loader whenever the file changes,
// until ctx is cancelled. The parent directory is watched so that editors
// that replace the file by rename are picked up. A catalog that fails to
// parse is logged and the previous templates stay active.
func Watch(ctx context.Context, path string, loader Loader, log logger.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	log = log.WithFields(map[string]interface{}{"component": "catalog_watcher", "path": target})
	log.Info("watching template catalog", nil)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
			return
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			log.Info("catalog watcher stopped", nil)
			return nil

		case <-timerCh:
			timer, timerCh = nil, nil
			reload(target, loader, log)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(ev.Name)
			if name != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				schedule()
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("catalog watcher error", map[string]interface{}{"error": werr.Error()})
		}
	}
}

func reload(path string, loader Loader, log logger.Logger) {
	cat, err := Load(path)
	if err != nil {
		log.Warn("catalog reload failed, keeping current templates", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := loader.Load(cat.Templates); err != nil {
		log.Warn("catalog reload rejected", map[string]interface{}{"error": err.Error()})
		return
	}
	log.Info("catalog reloaded", map[string]interface{}{"templates": len(cat.Templates)})
}
