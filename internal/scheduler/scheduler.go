package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockRanker/internal/model"
	"StockRanker/internal/notifier"
)

// ErrBusy is returned when a run is requested while another is in progress.
var ErrBusy = errors.New("a ranking run is already in progress")

// Runner executes one complete ranking run.
type Runner interface {
	Run(ctx context.Context) (*model.RunSummary, error)
}

// Sender delivers a chat message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler triggers ranking runs on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier Sender // optional
	Top      int
	Log      *zap.Logger
	Ctx      context.Context

	runMu   sync.Mutex // held for the duration of a run
	mu      sync.Mutex // guards the fields below
	running bool
	last    *model.RunSummary
	entry   cron.EntryID
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, sender Sender, top int, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Notifier: sender,
		Top:      top,
		Log:      log,
		Ctx:      ctx,
	}
}

// Register schedules the ranking run on spec (six fields, seconds first).
func (s *Scheduler) Register(spec string) error {
	id, err := s.Cron.AddFunc(spec, s.scheduledRun)
	if err != nil {
		return fmt.Errorf("register ranking task: %w", err)
	}
	s.mu.Lock()
	s.entry = id
	s.mu.Unlock()
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", zap.Time("next_run", s.NextRun()))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// NextRun reports when the ranking task fires next, or the zero time.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	id := s.entry
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	return s.Cron.Entry(id).Next
}

// Last returns the most recent run summary, or nil.
func (s *Scheduler) Last() *model.RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Running reports whether a run is in progress.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow executes a ranking run unless one is already in progress.
func (s *Scheduler) RunNow(ctx context.Context) (*model.RunSummary, error) {
	if !s.runMu.TryLock() {
		return nil, ErrBusy
	}
	defer s.runMu.Unlock()

	s.setRunning(true)
	defer s.setRunning(false)

	summary, err := s.Runner.Run(ctx)
	if summary != nil {
		s.mu.Lock()
		s.last = summary
		s.mu.Unlock()
	}
	return summary, err
}

func (s *Scheduler) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

func (s *Scheduler) scheduledRun() {
	s.Log.Info("running scheduled ranking")
	_, err := s.RunNow(s.Ctx)
	switch {
	case errors.Is(err, ErrBusy):
		s.Log.Warn("skipping scheduled run, previous run still in progress")
	case err != nil:
		s.Log.Error("scheduled run failed", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ Ranking run failed: %v", err))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	// "/rank@MyBot" in group chats
	cmd, _, _ := strings.Cut(fields[0], "@")

	switch cmd {
	case "/rank":
		if s.Running() {
			return "⏳ " + ErrBusy.Error() + "."
		}
		go func() {
			if _, err := s.RunNow(ctx); err != nil && !errors.Is(err, ErrBusy) {
				s.Log.Error("manual run failed", zap.Error(err))
				s.trySend(fmt.Sprintf("❌ Ranking run failed: %v", err))
			}
		}()
		return "🚀 Ranking run started."
	case "/top":
		last := s.Last()
		if last == nil {
			return "No run has completed yet."
		}
		return notifier.FormatRanking(last, s.Top)
	case "/status":
		return notifier.FormatStatus(s.Last(), s.Running(), s.NextRun())
	default:
		return "Available commands:\n• /rank run the ranking now\n• /top show the last ranking\n• /status show the last run and schedule"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Error("send notification failed", zap.Error(err))
	}
}
