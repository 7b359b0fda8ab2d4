package md2cv

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// recorder collects session callbacks.
type recorder struct {
	mu        sync.Mutex
	published []*Result
	errs      []error
	states    []State
	done      chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 16)}
}

func (r *recorder) options() []SessionOption {
	return []SessionOption{
		WithOnPublish(func(res *Result) {
			r.mu.Lock()
			r.published = append(r.published, res)
			r.mu.Unlock()
			r.done <- struct{}{}
		}),
		WithOnError(func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		}),
		WithOnState(func(s State) {
			r.mu.Lock()
			r.states = append(r.states, s)
			r.mu.Unlock()
		}),
	}
}

func (r *recorder) publishCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.published)
}

func blockText(res *Result) string {
	var b strings.Builder
	for _, blk := range res.Blocks {
		b.WriteString(blk.Markup)
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// TestSession - Debounced live pipeline
// ---------------------------------------------------------------------------

func TestSession_CoalescesEdits(t *testing.T) {
	t.Parallel()

	m := &mockMeasurer{}
	e, _ := newTestEngine(t, m)
	rec := newRecorder()
	s := NewSession(context.Background(), e, append(rec.options(), WithDebounce(30*time.Millisecond))...)
	defer func() { _ = s.Close() }()

	for _, md := range []string{"draft one", "draft two", "draft three"} {
		s.SetMarkdown(md)
	}

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("no result published")
	}

	if got := s.Passes(); got != 1 {
		t.Errorf("Passes() = %d, want 1", got)
	}
	if got := blockText(s.Result()); !strings.Contains(got, "draft three") {
		t.Errorf("published result = %q, want the latest edit", got)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %v, want idle", s.State())
	}
}

func TestSession_StateOrder(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, &mockMeasurer{})
	rec := newRecorder()
	s := NewSession(context.Background(), e, rec.options()...)
	defer func() { _ = s.Close() }()

	s.SetMarkdown("text")
	if !s.Flush() {
		t.Fatal("Flush() = false, want a pass")
	}

	want := []State{StateParsing, StateRendering, StateMeasuring, StatePaginated, StateIdle}
	rec.mu.Lock()
	got := append([]State(nil), rec.states...)
	rec.mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("states[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSession_ErrorKeepsPreviousResult(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, &mockMeasurer{})
	rec := newRecorder()
	s := NewSession(context.Background(), e, rec.options()...)
	defer func() { _ = s.Close() }()

	s.SetMarkdown("---\nname: Jane Doe\n---\ngood")
	s.Flush()
	good := s.Result()
	if good == nil {
		t.Fatal("Result() = nil after a good pass")
	}

	s.SetMarkdown("---\nname: [broken\n---\nbad")
	s.Flush()

	if !errors.Is(s.Err(), ErrFrontMatter) {
		t.Errorf("Err() = %v, want ErrFrontMatter", s.Err())
	}
	if s.Result() != good {
		t.Error("failed pass replaced the published result")
	}
	if len(rec.errs) != 1 {
		t.Errorf("onError calls = %d, want 1", len(rec.errs))
	}

	s.SetMarkdown("---\nname: Jane Doe\n---\nfixed")
	s.Flush()
	if s.Err() != nil {
		t.Errorf("Err() = %v after a good pass, want nil", s.Err())
	}
}

func TestSession_MeasurementUnavailableIsSilent(t *testing.T) {
	t.Parallel()

	m := &mockMeasurer{err: ErrMeasurementUnavailable}
	e, _ := newTestEngine(t, m)
	rec := newRecorder()
	s := NewSession(context.Background(), e, rec.options()...)
	defer func() { _ = s.Close() }()

	s.SetMarkdown("text")
	s.Flush()

	if s.Result() != nil || s.Err() != nil || len(rec.errs) != 0 {
		t.Errorf("Result() = %v, Err() = %v, errors = %v; want nothing", s.Result(), s.Err(), rec.errs)
	}

	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()

	s.SetCSS("p { color: red; }")
	s.Flush()
	res := s.Result()
	if res == nil {
		t.Fatal("Result() = nil after the surface became ready")
	}
	if !strings.Contains(blockText(res), "text") || res.Sheet.Custom != "p { color: red; }" {
		t.Errorf("retry lost earlier input: blocks %q, css %q", blockText(res), res.Sheet.Custom)
	}
}

func TestSession_NewEditCancelsInFlightPass(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	m := &mockMeasurer{hook: func(ctx context.Context, blocks []Block) error {
		for _, b := range blocks {
			if strings.Contains(b.Markup, "slow") {
				close(entered)
				<-ctx.Done()
				return ctx.Err()
			}
		}
		return nil
	}}
	e, _ := newTestEngine(t, m)
	rec := newRecorder()
	s := NewSession(context.Background(), e, append(rec.options(), WithDebounce(time.Hour))...)
	defer func() { _ = s.Close() }()

	s.SetMarkdown("slow")
	flushed := make(chan struct{})
	go func() {
		s.Flush()
		close(flushed)
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("slow pass never started measuring")
	}

	s.SetMarkdown("fast")
	<-flushed
	s.Flush()

	if got := rec.publishCount(); got != 1 {
		t.Fatalf("published %d results, want 1", got)
	}
	if got := blockText(s.Result()); !strings.Contains(got, "fast") {
		t.Errorf("published result = %q, want the newer edit", got)
	}
}

func TestSession_SetStyle(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, &mockMeasurer{})
	s := NewSession(context.Background(), e)
	defer func() { _ = s.Close() }()

	style := DefaultStyleConfiguration()
	style.Paper = "legal"
	s.SetMarkdown("text")
	s.SetStyle(style)
	s.Flush()

	res := s.Result()
	if res == nil || res.Style.Paper != "legal" {
		t.Fatalf("Result() style = %+v, want legal paper", res)
	}
}

func TestSession_Close(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, &mockMeasurer{})
	s := NewSession(context.Background(), e)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	for name, set := range map[string]func() error{
		"Update":      func() error { return s.Update(Input{Markdown: "ignored"}) },
		"SetMarkdown": func() error { return s.SetMarkdown("ignored") },
		"SetStyle":    func() error { return s.SetStyle(DefaultStyleConfiguration()) },
		"SetCSS":      func() error { return s.SetCSS("p {}") },
	} {
		if err := set(); !errors.Is(err, ErrSessionClosed) {
			t.Errorf("%s() after Close error = %v, want ErrSessionClosed", name, err)
		}
	}
	if s.Flush() {
		t.Error("Flush() ran a pass after Close")
	}
	if s.Result() != nil {
		t.Error("Result() published after Close")
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateParsing, "parsing"},
		{StateRendering, "rendering"},
		{StateMeasuring, "measuring"},
		{StatePaginated, "paginated"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
