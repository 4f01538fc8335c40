package shader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

func (l *library) Watch() error {
	if l.overrideDir == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(l.overrideDir); err != nil {
		w.Close()
		return err
	}
	incDir := filepath.Join(l.overrideDir, includeDir)
	if info, err := os.Stat(incDir); err == nil && info.IsDir() {
		if err := w.Add(incDir); err != nil {
			w.Close()
			return err
		}
	}

	l.watcher = w
	l.done = make(chan struct{})
	go l.watchLoop(w, l.done)
	logger.Info("watching shaders", zap.String("dir", l.overrideDir))
	return nil
}

func (l *library) Close() error {
	var err error
	l.once.Do(func() {
		l.mu.Lock()
		w, done := l.watcher, l.done
		l.watcher, l.done = nil, nil
		l.mu.Unlock()

		if w == nil {
			return
		}
		close(done)
		err = w.Close()
	})
	return err
}

func (l *library) watchLoop(w *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".wgsl") {
				continue
			}
			l.handleChange(event.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("shader watcher error", zap.Error(err))
		}
	}
}

// handleChange reloads the changed shader, or every cached shader when an include changed.
func (l *library) handleChange(name string) {
	var keys []string
	if filepath.Base(filepath.Dir(name)) == includeDir {
		l.mu.Lock()
		for k := range l.cache {
			keys = append(keys, k)
		}
		l.mu.Unlock()
	} else {
		keys = []string{strings.TrimSuffix(filepath.Base(name), ".wgsl")}
	}

	for _, key := range keys {
		s, err := l.Reload(key)
		if err != nil {
			if errors.Is(err, ErrLayoutMismatch) {
				logger.Error("shader reload rejected", zap.String("shader", key), zap.Error(err))
			} else {
				logger.Warn("shader reload failed", zap.String("shader", key), zap.Error(err))
			}
			continue
		}
		logger.Info("shader reloaded", zap.String("shader", key))

		l.mu.Lock()
		listeners := append([]func(Shader){}, l.listeners...)
		l.mu.Unlock()
		for _, fn := range listeners {
			fn(s)
		}
	}
}
