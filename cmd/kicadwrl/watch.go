package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/maznobu/kicadwrl/internal/i18n"
	"github.com/maznobu/kicadwrl/internal/scene"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

func cmdWatch(args []string) error {
	s, err := newSession("watch", args, true, nil)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	r := newReporter(os.Stdout)
	r.heading(s.printer.Sprintf(i18n.Watching, s.scenePath))

	// Directories are watched rather than files so that editors which
	// replace a file on save keep being tracked.
	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	rewatch := func() {
		files := []string{s.scenePath}
		if f, err := scene.ReadFile(s.scenePath); err == nil {
			files = append(files, f.MeshFiles(filepath.Dir(s.scenePath))...)
		}
		clear(watched)
		for _, f := range files {
			abs, err := filepath.Abs(f)
			if err != nil {
				continue
			}
			watched[abs] = true
			dir := filepath.Dir(abs)
			if dirs[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				s.log.Warn("Cannot watch directory", zap.String("dir", dir), zap.Error(err))
				continue
			}
			dirs[dir] = true
		}
	}

	runOnce := func() {
		res, err := s.export(ctx)
		if err != nil && res == nil {
			r.fail(s.printer.Sprintf(i18n.ExportFailed, err))
		}
		r.result(res, err)
		rewatch()
	}

	runOnce()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			s.log.Debug("Change detected", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("Watcher error", zap.Error(err))
		case <-timer.C:
			runOnce()
		}
	}
}
