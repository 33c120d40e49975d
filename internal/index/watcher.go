package index

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/catalog"
)

// Catalog event kinds passed to EventCallback.
const (
	EventProjectCreated = "project.created"
	EventProjectDeleted = "project.deleted"
	EventResultCreated  = "result.created"
	EventResultUpdated  = "result.updated"
	EventResultDeleted  = "result.deleted"
	EventResultFailed   = "result.failed"
)

// EventCallback is called after a watcher-driven index change.
// file is empty for project events.
type EventCallback func(kind, project, file string)

const (
	reconcileDelay = 200 * time.Millisecond
	// changeDelay is how long a result file must stay quiet before it is
	// re-indexed, so a file being copied in is parsed once.
	changeDelay = 200 * time.Millisecond
)

// Watch starts an fsnotify watcher on the data root and its project
// directories and processes change events until ctx is cancelled. It calls
// cb (if non-nil) after each index mutation.
//
// Writes to a result file are debounced per file. Project directories
// created at runtime are added to the watch list.
// Rename events trigger a debounced reconciliation pass.
func Watch(ctx context.Context, db *DB, cat catalog.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := cat.Root()
	if err := w.Add(root); err != nil {
		return err
	}
	projects := make(map[string]struct{})
	list, err := cat.Projects()
	if err != nil {
		return err
	}
	for _, p := range list {
		if err := w.Add(filepath.Join(root, p.Name)); err != nil {
			logger.Warn("watcher: add project failed", slog.String("project", p.Name), slog.String("error", err.Error()))
			continue
		}
		projects[p.Name] = struct{}{}
	}

	logger.Info("watcher: started", slog.String("root", root), slog.Int("projects", len(projects)))

	emit := func(kind, project, file string) {
		if cb != nil {
			cb(kind, project, file)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	// pending holds files written since the last flush, with the event kind
	// to report. A create stays a create through later writes.
	pending := make(map[Key]string)
	var changeTimer *time.Timer
	var changeCh <-chan time.Time

	scheduleChange := func(k Key, kind string) {
		if prev, ok := pending[k]; !ok || prev != EventResultCreated {
			pending[k] = kind
		}
		if changeTimer == nil {
			changeTimer = time.NewTimer(changeDelay)
			changeCh = changeTimer.C
		} else {
			changeTimer.Reset(changeDelay)
		}
	}

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			if changeTimer != nil {
				changeTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, cat, logger, emit)

		case <-changeCh:
			for k, kind := range pending {
				handleChange(db, cat, k.Project, k.File, kind, logger, emit)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			project, file, ok := catalog.Split(root, ev.Name)
			if !ok {
				continue
			}

			if file == "" {
				switch {
				case ev.Op&fsnotify.Create != 0:
					if info, statErr := os.Stat(ev.Name); statErr != nil || !info.IsDir() {
						continue
					}
					if addErr := w.Add(ev.Name); addErr != nil {
						logger.Warn("watcher: add project failed", slog.String("project", project), slog.String("error", addErr.Error()))
						continue
					}
					projects[project] = struct{}{}
					logger.Debug("watcher: watching project", slog.String("project", project))
					emit(EventProjectCreated, project, "")
					indexProject(db, cat, project, logger, emit)

				case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					if _, known := projects[project]; !known {
						continue
					}
					delete(projects, project)
					for k := range pending {
						if k.Project == project {
							delete(pending, k)
						}
					}
					_ = w.Remove(ev.Name)
					if _, delErr := db.DeleteProject(project); delErr != nil {
						logger.Warn("watcher: delete project failed", slog.String("project", project), slog.String("error", delErr.Error()))
					}
					logger.Debug("watcher: project removed", slog.String("project", project))
					emit(EventProjectDeleted, project, "")
					if ev.Op&fsnotify.Rename != 0 {
						scheduleReconcile()
					}
				}
				continue
			}

			if !strings.HasSuffix(file, catalog.ResultExt) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind := EventResultUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = EventResultCreated
				}
				scheduleChange(Key{Project: project, File: file}, kind)

			case ev.Op&fsnotify.Remove != 0:
				delete(pending, Key{Project: project, File: file})
				if delErr := db.DeleteResult(project, file); delErr != nil {
					logger.Warn("watcher: delete failed",
						slog.String("project", project), slog.String("file", file), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("project", project), slog.String("file", file))
				emit(EventResultDeleted, project, file)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the old path only; the new
				// name arrives as a Create if it stays in a watched dir.
				delete(pending, Key{Project: project, File: file})
				if delErr := db.DeleteResult(project, file); delErr == nil {
					emit(EventResultDeleted, project, file)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handleChange re-indexes one file and reports the outcome. A file that no
// longer parses is reported as failed.
func handleChange(db *DB, cat catalog.Provider, project, file, kind string, logger *slog.Logger, emit EventCallback) {
	err := indexFile(db, cat, project, file)
	switch {
	case err == nil:
		logger.Debug("watcher: indexed", slog.String("project", project), slog.String("file", file), slog.String("op", kind))
		emit(kind, project, file)
	case apperr.IsLoadFailure(err):
		logger.Warn("watcher: load failed",
			slog.String("project", project), slog.String("file", file), slog.String("error", err.Error()))
		emit(EventResultFailed, project, file)
	case errors.Is(err, apperr.ErrNotFound):
		// Removed again before we got to read it.
	default:
		logger.Warn("watcher: index failed",
			slog.String("project", project), slog.String("file", file), slog.String("error", err.Error()))
	}
}

// indexProject indexes the result files already present in a new project directory.
func indexProject(db *DB, cat catalog.Provider, project string, logger *slog.Logger, emit EventCallback) {
	files, err := cat.ResultFiles(project)
	if err != nil {
		return
	}
	for _, f := range files {
		handleChange(db, cat, project, f.File, EventResultCreated, logger, emit)
	}
}

// reconcile removes index entries whose files are gone and indexes files
// the index does not know yet.
func reconcile(db *DB, cat catalog.Provider, logger *slog.Logger, emit EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	disk, err := listDisk(cat)
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	for k := range checksums {
		if _, ok := disk[k]; ok {
			continue
		}
		if delErr := db.DeleteResult(k.Project, k.File); delErr == nil {
			logger.Debug("reconcile: removed stale", slog.String("project", k.Project), slog.String("file", k.File))
			emit(EventResultDeleted, k.Project, k.File)
		}
	}

	for k := range disk {
		if _, ok := checksums[k]; ok {
			continue
		}
		handleChange(db, cat, k.Project, k.File, EventResultCreated, logger, emit)
	}
}
