// Package watcher reloads the live update set whenever updates.json changes on disk.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/loader"
	"lintang/saferoute/pkg/server/rest/service"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type UpdateApplier interface {
	ReplaceUpdates(ctx context.Context, updates []datastructure.EdgeUpdate) (service.SnapshotInfo, error)
}

type UpdatesWatcher struct {
	path     string
	svc      UpdateApplier
	debounce time.Duration
	log      *zap.Logger
	fw       *fsnotify.Watcher
}

// NewUpdatesWatcher watches the parent directory, the file itself is replaced by rename on every write.
func NewUpdatesWatcher(path string, svc UpdateApplier, debounce time.Duration, log *zap.Logger) (*UpdatesWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	return &UpdatesWatcher{
		path:     abs,
		svc:      svc,
		debounce: debounce,
		log:      log,
		fw:       fw,
	}, nil
}

// Run blocks until ctx is done. Bursts of events inside the debounce window cause one reload.
func (w *UpdatesWatcher) Run(ctx context.Context) error {
	defer w.fw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("updates watcher error", zap.Error(err))
		case <-timer.C:
			pending = false
			w.reload(ctx)
		}
	}
}

// reload a broken file is logged and skipped, the served snapshot stays as it is.
func (w *UpdatesWatcher) reload(ctx context.Context) {
	updates, err := loader.ReadUpdatesFile(w.path)
	if err != nil {
		w.log.Warn("skip reloading updates", zap.String("path", w.path), zap.Error(err))
		return
	}
	info, err := w.svc.ReplaceUpdates(ctx, updates)
	if err != nil {
		w.log.Warn("rejected updates file", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.log.Info("reloaded updates",
		zap.String("snapshot_id", info.ID),
		zap.Int("updates", info.NumUpdates))
}
