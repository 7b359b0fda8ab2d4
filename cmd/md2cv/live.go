package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	md2cv "github.com/alnah/go-md2cv"
)

// live keeps a Session current with the input file and its stylesheet.
type live struct {
	p       *pass
	session *md2cv.Session
	log     *zap.Logger

	mu  sync.Mutex
	css string
}

// startLive creates a Session over p and schedules the first pass.
func startLive(ctx context.Context, p *pass, opts ...md2cv.SessionOption) (*live, error) {
	in, err := readInput(p.input, p.settings)
	if err != nil {
		return nil, err
	}

	l := &live{p: p, log: p.settings.log.Named("live"), css: p.settings.css}

	sessOpts := []md2cv.SessionOption{
		md2cv.WithOnError(func(err error) {
			l.log.Warn("render failed"+hintFor(err), zap.Error(err))
		}),
	}
	if p.settings.debounce > 0 {
		sessOpts = append(sessOpts, md2cv.WithDebounce(p.settings.debounce))
	}
	l.session = md2cv.NewSession(ctx, p.engine, append(sessOpts, opts...)...)
	if err := l.session.Update(in); err != nil {
		return nil, err
	}
	return l, nil
}

// paths returns the files whose changes trigger a pass.
func (l *live) paths() []string {
	paths := []string{l.p.input}
	if css := l.p.settings.cfg.CSS.File; css != "" {
		paths = append(paths, css)
	}
	return paths
}

// changed reloads the file at path into the session.
func (l *live) changed(path string) {
	if samePath(path, l.p.settings.cfg.CSS.File) {
		css, err := resolveCSS(l.p.settings.cfg)
		if err != nil {
			l.log.Warn("reloading stylesheet", zap.Error(err))
			return
		}
		l.mu.Lock()
		l.css = css
		l.mu.Unlock()
		if err := l.session.SetCSS(css); err != nil {
			l.log.Debug("stylesheet change dropped", zap.Error(err))
		}
		return
	}

	in, err := readInput(l.p.input, l.p.settings)
	if err != nil {
		l.log.Warn("reloading markdown", zap.Error(err))
		return
	}
	l.mu.Lock()
	in.CSS = l.css
	l.mu.Unlock()
	if err := l.session.Update(in); err != nil {
		l.log.Debug("markdown change dropped", zap.Error(err))
	}
}

// Close stops the session.
func (l *live) Close() error {
	return l.session.Close()
}

// watchFiles calls onChange with the path of each watched file written or
// recreated, until ctx is done. Parent directories are watched because
// editors often save by renaming a temporary file over the original.
func watchFiles(ctx context.Context, paths []string, log *zap.Logger, onChange func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	watched := make(map[string]string, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		watched[abs] = p
		if err := w.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			orig, tracked := watched[filepath.Clean(ev.Name)]
			if !tracked || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			log.Debug("file changed", zap.String("path", orig), zap.Stringer("op", ev.Op))
			onChange(orig)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher", zap.Error(err))
		}
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
