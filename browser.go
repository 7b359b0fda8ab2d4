package md2cv

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"

	"github.com/alnah/go-md2cv/internal/process"
)

// browser lazily launches one headless Chrome shared by the measurer and
// the PDF renderer. Rod downloads Chromium on first run if none is found.
type browser struct {
	mu       sync.Mutex
	b        *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	log      *zap.Logger
}

func newBrowser(timeout time.Duration, log *zap.Logger) *browser {
	return &browser{timeout: timeout, log: log.Named("browser")}
}

// connect returns the running browser, launching it on first use.
func (b *browser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.b != nil {
		return b.b, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if noSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	rb := rod.New().ControlURL(u)
	if err := rb.Connect(); err != nil {
		kill(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b.log.Debug("browser connected", zap.String("url", u), zap.Int("pid", l.PID()))
	b.b = rb
	b.launcher = l
	return rb, nil
}

// deadline returns how long a page operation may take under ctx: the
// configured timeout, shortened by an earlier context deadline.
func (b *browser) deadline(ctx context.Context) (time.Duration, error) {
	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		timeout = min(timeout, left)
	}
	return timeout, nil
}

// Close releases browser resources.
func (b *browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.b == nil {
		return nil
	}
	err := b.b.Close()
	kill(b.launcher)
	b.b = nil
	b.launcher = nil
	return err
}

// kill stops Chrome and its helper processes.
func kill(l *launcher.Launcher) {
	if l == nil {
		return
	}
	process.KillProcessGroup(l.PID())
	l.Kill()
}

func noSandbox() bool {
	return os.Getenv("CI") == "true" ||
		os.Getenv("ROD_BROWSER_BIN") != "" ||
		os.Getenv("ROD_NO_SANDBOX") != ""
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
