package md2cv

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-md2cv/internal/debounce"
)

// State is the stage of the live pipeline.
type State int32

// Pipeline states, in pass order.
const (
	StateIdle State = iota
	StateParsing
	StateRendering
	StateMeasuring
	StatePaginated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StateRendering:
		return "rendering"
	case StateMeasuring:
		return "measuring"
	case StatePaginated:
		return "paginated"
	default:
		return "unknown"
	}
}

// DefaultDebounce is the shared quiet period for text, geometry and style changes.
const DefaultDebounce = debounce.DefaultWindow

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDebounce sets the quiet period before a pass starts.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		s.window = d
	}
}

// WithOnPublish registers a callback run after each published result.
func WithOnPublish(fn func(*Result)) SessionOption {
	return func(s *Session) {
		s.onPublish = fn
	}
}

// WithOnError registers a callback run when a pass fails.
// Superseded passes and unavailable measurement are not failures.
func WithOnError(fn func(error)) SessionOption {
	return func(s *Session) {
		s.onError = fn
	}
}

// WithOnState registers a callback run on every state transition.
func WithOnState(fn func(State)) SessionOption {
	return func(s *Session) {
		s.onState = fn
	}
}

// Session keeps the pages of a document current while it is edited.
// Changes are coalesced through one debounce window; each pass recomputes
// everything and publishes its result with an atomic swap. A newer change
// cancels the pass in flight, which then publishes nothing. A failed pass
// keeps the previous result visible.
type Session struct {
	engine *Engine
	log    *zap.Logger
	window time.Duration
	sched  *debounce.Scheduler[Input]

	onPublish func(*Result)
	onError   func(error)
	onState   func(State)

	ctx  context.Context
	stop context.CancelFunc

	mu       sync.Mutex
	input    Input
	inflight context.CancelFunc
	lastErr  error
	closed   bool

	state  atomic.Int32
	result atomic.Pointer[Result]
	passes atomic.Uint64
}

// NewSession creates a Session rendering through engine. Passes stop when
// ctx is done or Close is called. The engine is not closed by the session.
func NewSession(ctx context.Context, engine *Engine, opts ...SessionOption) *Session {
	s := &Session{
		engine: engine,
		log:    engine.log.Named("session"),
		window: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.stop = context.WithCancel(ctx)
	s.sched = debounce.New(s.window, s.pass)
	return s
}

// Update replaces the whole input and schedules a pass.
func (s *Session) Update(in Input) error {
	return s.change(func(cur *Input) { *cur = in })
}

// SetMarkdown replaces the document text and schedules a pass.
func (s *Session) SetMarkdown(md string) error {
	return s.change(func(cur *Input) { cur.Markdown = md })
}

// SetStyle replaces the style configuration and schedules a pass.
func (s *Session) SetStyle(style StyleConfiguration) error {
	return s.change(func(cur *Input) { cur.Style = &style })
}

// SetCSS replaces the custom style layer and schedules a pass.
func (s *Session) SetCSS(css string) error {
	return s.change(func(cur *Input) { cur.CSS = css })
}

// change applies a mutation and schedules a pass. It fails with
// ErrSessionClosed after Close.
func (s *Session) change(apply func(*Input)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	apply(&s.input)
	in := s.input
	if s.inflight != nil {
		s.inflight()
	}
	s.mu.Unlock()

	s.sched.Trigger(in)
	return nil
}

// Flush runs the pending pass now and waits for it. It reports whether a
// pass ran.
func (s *Session) Flush() bool {
	return s.sched.Flush()
}

// Result returns the latest published result, or nil before the first one.
func (s *Session) Result() *Result {
	return s.result.Load()
}

// State returns the current pipeline state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Err returns the error of the latest failed pass, cleared by the next
// published result.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Passes returns the number of passes started.
func (s *Session) Passes() uint64 {
	return s.passes.Load()
}

// Close stops scheduling and cancels the pass in flight. Later changes fail
// with ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.sched.Stop()
	s.stop()
	return nil
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	if s.onState != nil {
		s.onState(st)
	}
}

// pass runs on the scheduler; calls never overlap.
func (s *Session) pass(in Input) {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight = cancel
	s.mu.Unlock()

	n := s.passes.Add(1)
	res, err := s.engine.run(ctx, in, s.setState)

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()

	switch {
	case ctx.Err() != nil:
		s.log.Debug("pass superseded", zap.Uint64("pass", n))
	case errors.Is(err, ErrMeasurementUnavailable):
		s.log.Debug("measurement surface not ready, deferring", zap.Uint64("pass", n), zap.Error(err))
	case err != nil:
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.log.Warn("pass failed, keeping previous pages", zap.Uint64("pass", n), zap.Error(err))
		if s.onError != nil {
			s.onError(err)
		}
	default:
		s.result.Store(res)
		s.mu.Lock()
		s.lastErr = nil
		s.mu.Unlock()
		s.setState(StatePaginated)
		s.log.Debug("published", zap.Uint64("pass", n), zap.Int("pages", len(res.Pages)))
		if s.onPublish != nil {
			s.onPublish(res)
		}
	}
	s.setState(StateIdle)
}
