// Package report is the view that shows a match report handed off by the analysis flow.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/utils"

	"go.uber.org/zap"
)

// DefaultRedirectDelay is how long the missing-result notice stays before going back.
const DefaultRedirectDelay = 2 * time.Second

type State int

const (
	Unmounted State = iota
	Showing
	MissingResult
	Redirected
)

func (s State) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case Showing:
		return "showing"
	case MissingResult:
		return "missing_result"
	case Redirected:
		return "redirected"
	default:
		return "unknown"
	}
}

// Source hands the result to the view. It is read once on mount.
type Source interface {
	Take() (*analysis.Result, bool)
}

// Navigator takes the user back to the analysis screen.
type Navigator interface {
	BackToAnalyzer()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) BackToAnalyzer() { f() }

type View struct {
	source Source
	nav    Navigator
	delay  time.Duration
	logger *zap.Logger
	wait   func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	state    State
	result   *analysis.Result
	redirect sync.Once
}

func NewView(source Source, nav Navigator, delay time.Duration, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay < 0 {
		delay = DefaultRedirectDelay
	}

	return &View{
		source: source,
		nav:    nav,
		delay:  delay,
		logger: logger,
		wait:   utils.WaitFor,
		state:  Unmounted,
	}
}

// Mount reads the handed-off result. Without one, the view switches to MissingResult
// at once and, after the redirect delay, navigates back exactly once. Cancelling ctx
// before the delay runs out unmounts the view without navigating.
func (v *View) Mount(ctx context.Context) error {
	var (
		result *analysis.Result
		ok     bool
	)
	if v.source != nil {
		result, ok = v.source.Take()
	}

	v.mu.Lock()
	if ok {
		v.result = result
		v.state = Showing
		v.mu.Unlock()
		return nil
	}
	v.state = MissingResult
	v.mu.Unlock()

	v.logger.Warn("no result data found, redirecting", zap.Duration("delay", v.delay))

	if err := v.wait(ctx, v.delay); err != nil {
		return err
	}

	v.redirect.Do(func() {
		v.mu.Lock()
		v.state = Redirected
		v.mu.Unlock()

		if v.nav != nil {
			v.nav.BackToAnalyzer()
		}
	})

	return nil
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Result returns a copy of the shown result, or nil.
func (v *View) Result() *analysis.Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result.Clone()
}
