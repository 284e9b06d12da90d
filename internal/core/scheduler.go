package core

// scheduler.go posts the portfolio report to the configured channel on a
// fixed period.
//
// The scheduler is a small state machine: Idle until a tick arrives,
// Running while one cycle resolves the channel, builds the report and
// delivers it, then Idle again. A cycle that fails for any reason, panics
// included, is logged and dropped; the next tick runs as usual.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/depotbot/internal/logging"
	"github.com/google/uuid"
)

// ErrAlreadyStarted is returned by a second call to Scheduler.Start.
var ErrAlreadyStarted = errors.New("scheduler already started")

// Runner runs the report pipeline against a destination.
type Runner interface {
	Run(ctx context.Context, dest Destination) Result
}

// State is the scheduler's position in its cycle.
type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// SchedulerConfig holds the delivery period.
type SchedulerConfig struct {
	Interval   time.Duration // Time between cycles (default: 10m)
	RunOnStart bool          // Run one cycle immediately on Start
}

// CycleReport summarizes one finished cycle.
type CycleReport struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Status    Status        `json:"status"`
	Records   int           `json:"records"`
	Pages     int           `json:"pages"`
	Error     string        `json:"error,omitempty"`
}

// Scheduler periodically delivers the report.
type Scheduler struct {
	runner   Runner
	resolver Resolver
	cfg      SchedulerConfig

	started atomic.Bool
	state   atomic.Int32
	cycles  atomic.Int64

	mu     sync.Mutex
	last   *CycleReport
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a Scheduler. A non-positive interval falls back to
// ten minutes.
func NewScheduler(runner Runner, resolver Resolver, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	return &Scheduler{
		runner:   runner,
		resolver: resolver,
		cfg:      cfg,
	}
}

// Start launches the ticking goroutine. Only the first call has an effect;
// later calls return ErrAlreadyStarted. The loop ends when ctx is cancelled
// or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.loop(loopCtx, done)

	slog.Info("report scheduler started",
		"interval", s.cfg.Interval,
		"run_on_start", s.cfg.RunOnStart,
	)
	return nil
}

// Stop cancels the loop and waits for a running cycle to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		slog.Info("report scheduler stopped", "cycles", s.cycles.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if s.cfg.RunOnStart {
		s.RunCycle(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle performs one resolve, build and deliver pass. It never panics
// and never returns an error; the outcome is logged and returned.
func (s *Scheduler) RunCycle(ctx context.Context) (report CycleReport) {
	report = CycleReport{ID: uuid.NewString(), StartedAt: time.Now()}
	ctx = logging.WithCycleID(ctx, report.ID)
	logger := logging.FromContext(ctx)

	s.state.Store(int32(StateRunning))
	defer func() {
		if r := recover(); r != nil {
			report.Status = StatusFailed
			report.Error = fmt.Sprintf("panic: %v", r)
			logger.Error("report cycle panicked", "panic", r, "stack", string(debug.Stack()))
		}
		report.Duration = time.Since(report.StartedAt)
		s.finish(report)
	}()

	dest, err := s.resolver.Resolve(ctx)
	if err != nil {
		report.Status = StatusDeliveryFailed
		report.Error = err.Error()
		logger.Warn("report destination unresolved, skipping cycle", "error", err)
		return report
	}

	res := s.runner.Run(ctx, dest)
	report.Status = res.Status
	report.Records = res.Records
	report.Pages = res.Pages

	switch res.Status {
	case StatusOK:
		logger.Info("report delivered",
			"destination", dest.String(),
			"records", res.Records,
			"pages", res.Pages,
			"total", res.Total.StringFixed(2),
			"duration_ms", res.Duration.Milliseconds(),
		)
	case StatusNoData:
		logger.Info("report skipped, sheet has no rows", "destination", dest.String())
	default:
		if res.Err != nil {
			report.Error = res.Err.Error()
		}
		logger.Error("report cycle failed",
			"status", res.Status,
			"destination", dest.String(),
			"pages_delivered", res.Pages,
			"error", res.Err,
		)
	}
	return report
}

func (s *Scheduler) finish(report CycleReport) {
	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()
	s.cycles.Add(1)
	s.state.Store(int32(StateIdle))
}

// State returns whether a cycle is in progress.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Started reports whether Start has been called.
func (s *Scheduler) Started() bool {
	return s.started.Load()
}

// Cycles returns the number of finished cycles.
func (s *Scheduler) Cycles() int64 {
	return s.cycles.Load()
}

// Interval returns the configured period.
func (s *Scheduler) Interval() time.Duration {
	return s.cfg.Interval
}

// LastCycle returns the most recent finished cycle, if any.
func (s *Scheduler) LastCycle() (CycleReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return CycleReport{}, false
	}
	return *s.last, true
}
