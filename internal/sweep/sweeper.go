// Package sweep periodically completes confirmed reservations whose
// interval has ended.
package sweep

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/timeslot"
)

// State is the current state of the sweeper.
type State int

const (
	Idle State = iota
	Running
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Status describes the most recent sweep.
type Status struct {
	State     State
	LastRun   time.Time
	Completed int
	Error     error
}

// ResultMsg is a tea.Msg sent when a sweep finishes.
type ResultMsg struct {
	Completed []model.Reservation
	Error     error
}

// Completer completes reservations that ended at or before now.
type Completer interface {
	CompleteElapsed(ctx context.Context, now time.Time) ([]model.Reservation, error)
}

// sweepTimeout is the maximum time allowed for a single sweep.
const sweepTimeout = 30 * time.Second

// Sweeper runs a Completer on a ticker and on demand.
type Sweeper struct {
	completer Completer
	clock     timeslot.Clock
	interval  time.Duration
	logger    *slog.Logger

	resultCh  chan ResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	done      chan struct{}

	mu      sync.Mutex
	running bool
	stopped bool
	status  Status
}

// New creates a Sweeper. A non-positive interval defaults to five minutes.
func New(c Completer, clock timeslot.Clock, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if clock == nil {
		clock = timeslot.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		completer: c,
		clock:     clock,
		interval:  interval,
		logger:    logger.With("component", "sweep"),
		resultCh:  make(chan ResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
	}
}

// Start launches the sweep loop, which runs once immediately and then on
// every tick. The returned command delivers the next ResultMsg to a Bubble
// Tea program; callers outside a TUI can read Results instead.
//
// A Sweeper runs at most once: Start after Stop returns nil.
func (s *Sweeper) Start() tea.Cmd {
	s.mu.Lock()
	if s.running || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopCh, s.done
	s.mu.Unlock()

	go s.loop(stop, done)

	return s.WaitForNextResult()
}

// Stop halts the sweep loop and waits for an in-progress sweep to finish.
// Results is closed by the time Stop returns.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.running = false
	s.stopped = true
	done := s.done
	s.mu.Unlock()

	<-done
}

// Trigger requests an immediate sweep. Requests made while one is already
// pending are coalesced.
func (s *Sweeper) Trigger() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the outcome of the most recent sweep.
func (s *Sweeper) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Results delivers the outcome of every sweep run by the loop. Results are
// dropped when nobody reads them. The channel is closed when the loop exits.
func (s *Sweeper) Results() <-chan ResultMsg {
	return s.resultCh
}

// WaitForNextResult returns a tea.Cmd that waits for the next sweep result.
// Call it again after handling a ResultMsg to keep listening. Once the
// sweeper has stopped the command yields nil, which ends the chain.
func (s *Sweeper) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-s.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// RunOnce performs a single sweep at the clock's current time.
func (s *Sweeper) RunOnce(ctx context.Context) ResultMsg {
	s.setStatus(Running, 0, nil)

	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	completed, err := s.completer.CompleteElapsed(ctx, s.clock.Now())
	if err != nil {
		s.logger.Warn("sweep failed", "completed", len(completed), "error", err)
		s.setStatus(Failed, len(completed), err)
	} else {
		s.logger.Debug("sweep finished", "completed", len(completed))
		s.setStatus(Idle, len(completed), nil)
	}
	return ResultMsg{Completed: completed, Error: err}
}

func (s *Sweeper) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer close(s.resultCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sendResult(s.RunOnce(context.Background()))

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sendResult(s.RunOnce(context.Background()))
		case <-s.triggerCh:
			s.sendResult(s.RunOnce(context.Background()))
		}
	}
}

func (s *Sweeper) setStatus(state State, completed int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.State = state
	if state == Running {
		return
	}
	s.status.LastRun = s.clock.Now()
	s.status.Completed = completed
	s.status.Error = err
}

// sendResult publishes a result without blocking the loop.
func (s *Sweeper) sendResult(msg ResultMsg) {
	select {
	case s.resultCh <- msg:
	default:
	}
}
