// Package workflow holds the state of one analysis attempt, from picking a resume
// to handing the normalized result over to the report view.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/gate"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/scorer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State int

const (
	Idle State = iota
	Ready
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrNotReady = errors.New("inputs are not ready for submission")
	ErrFinished = errors.New("analysis already finished, start a new one")
	ErrClosed   = errors.New("analysis screen was closed")
)

// Submitter sends a validated request to the scoring service.
type Submitter interface {
	Submit(ctx context.Context, req *gate.Request) (*analysis.Result, error)
	Endpoint() string
}

// Deliverer passes the result to the next view.
type Deliverer interface {
	Deliver(result *analysis.Result) bool
}

// Machine is one analysis attempt. It never leaves Succeeded; start a new Machine instead.
type Machine struct {
	mu sync.Mutex

	// ctx lives as long as the analysis screen, Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	id        string
	logger    *zap.Logger
	submitter Submitter
	handoff   Deliverer

	state      State
	file       *analysis.File
	skillsText string
	lastErr    error
	closed     bool
}

func New(ctx context.Context, submitter Submitter, handoff Deliverer, log *zap.Logger) *Machine {
	ctx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()

	return &Machine{
		ctx:       ctx,
		cancel:    cancel,
		id:        id,
		logger:    logger.WithAttemptFields(log, id, submitter.Endpoint()),
		submitter: submitter,
		handoff:   handoff,
		state:     Idle,
	}
}

func (m *Machine) ID() string { return m.id }

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CanSubmit is false while a submission is outstanding, whatever the inputs are.
func (m *Machine) CanSubmit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed && m.state == Ready
}

func (m *Machine) File() *analysis.File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file
}

func (m *Machine) SkillsText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skillsText
}

// Err returns the last submission failure, cleared by the next submit.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// SelectFile replaces the chosen file with whatever the user picked.
// A non-PDF file is kept but leaves the machine in Idle.
func (m *Machine) SelectFile(file *analysis.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.editableLocked(); err != nil {
		return err
	}

	m.file = file
	m.evaluateLocked()

	return nil
}

// DropFile accepts only PDFs. A rejected file leaves the previous choice untouched
// and the returned error should be shown to the user.
func (m *Machine) DropFile(file *analysis.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.editableLocked(); err != nil {
		return err
	}

	if err := gate.CheckFile(file); err != nil {
		m.logger.Debug("rejected dropped file", zap.Error(err))
		return err
	}

	m.file = file
	m.evaluateLocked()

	return nil
}

func (m *Machine) EditSkills(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.editableLocked(); err != nil {
		return err
	}

	m.skillsText = text
	m.evaluateLocked()

	return nil
}

// Submit sends the current inputs. It blocks until the service answers.
// On success the result is handed off and the machine stays in Succeeded.
// On failure the machine returns to Ready with the inputs preserved and the
// *scorer.SubmissionError is returned. A response that arrives after Close is dropped.
func (m *Machine) Submit() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.state != Ready {
		state := m.state
		m.mu.Unlock()
		if state == Succeeded {
			return ErrFinished
		}
		return fmt.Errorf("%w: state is %s", ErrNotReady, state)
	}

	req, err := gate.NewRequest(m.file, m.skillsText)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}

	m.transitionLocked(Submitting)
	m.lastErr = nil
	ctx := m.ctx
	m.mu.Unlock()

	result, err := m.submitter.Submit(ctx, req)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.logger.Info("dropping late response", zap.String("reason", ErrClosed.Error()))
		return ErrClosed
	}

	if err != nil {
		m.transitionLocked(Failed)
		m.lastErr = err
		m.logFailure(err)
		// Back to Ready, or Idle if the inputs were edited into something invalid meanwhile.
		m.evaluateLocked()
		m.mu.Unlock()
		return err
	}

	m.transitionLocked(Succeeded)
	m.mu.Unlock()

	if m.handoff != nil && !m.handoff.Deliver(result) {
		m.logger.Warn("result was not handed off", zap.String("reason", "handoff already used"))
	}

	return nil
}

// Close is called when the analysis screen goes away. It cancels an outstanding request.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	m.cancel()
}

func (m *Machine) editableLocked() error {
	if m.closed {
		return ErrClosed
	}
	if m.state == Succeeded {
		return ErrFinished
	}
	return nil
}

// evaluateLocked moves between Idle and Ready. Submitting is left alone.
func (m *Machine) evaluateLocked() {
	if m.state == Submitting || m.state == Succeeded {
		return
	}

	next := Idle
	if gate.CanSubmit(m.file, m.skillsText) {
		next = Ready
	}
	m.transitionLocked(next)
}

func (m *Machine) transitionLocked(next State) {
	if m.state == next {
		return
	}

	m.logger.Debug("state transition",
		zap.String("from", m.state.String()),
		zap.String("to", next.String()),
	)
	m.state = next
}

func (m *Machine) logFailure(err error) {
	var subErr *scorer.SubmissionError
	if errors.As(err, &subErr) {
		m.logger.Warn("analysis failed",
			zap.String(logger.FieldFailureKind, string(subErr.Kind)),
			zap.Int("status", subErr.Status),
			zap.Error(subErr.Cause),
		)
		return
	}

	m.logger.Warn("analysis failed", zap.Error(err))
}
