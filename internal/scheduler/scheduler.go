// Package scheduler drives the poll cadences. The global poll, the user
// poll, and the feed refresh are registered as independent interval jobs
// so none of them can block another.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/BreakThePill/breakpill/internal/activity"
	"github.com/BreakThePill/breakpill/internal/countdown"
	"github.com/BreakThePill/breakpill/internal/poller"
	"github.com/BreakThePill/breakpill/internal/session"
)

// Scheduler manages all interval tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Global    *poller.GlobalPoller
	User      *poller.UserPoller
	Feed      *activity.Aggregator
	Countdown *countdown.Timer
	Session   *session.Manager
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, g *poller.GlobalPoller, u *poller.UserPoller, feed *activity.Aggregator, cd *countdown.Timer, sess *session.Manager) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(),
		Global:    g,
		User:      u,
		Feed:      feed,
		Countdown: cd,
		Session:   sess,
		Ctx:       ctx,
	}
}

// RegisterAll registers the poll and feed tasks at the given intervals
// (Go duration strings, e.g. "5s").
func (s *Scheduler) RegisterAll(pollEvery, feedEvery string) error {
	if _, err := s.Cron.AddFunc("@every "+pollEvery, s.globalTask); err != nil {
		return fmt.Errorf("register global poll: %w", err)
	}
	if _, err := s.Cron.AddFunc("@every "+pollEvery, s.userTask); err != nil {
		return fmt.Errorf("register user poll: %w", err)
	}
	if _, err := s.Cron.AddFunc("@every "+feedEvery, s.feedTask); err != nil {
		return fmt.Errorf("register feed refresh: %w", err)
	}
	return nil
}

// Start starts the interval scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunAllNow executes every task immediately (startup, round events,
// refresh-on-connect).
func (s *Scheduler) RunAllNow() {
	s.globalTask()
	s.userTask()
	s.feedTask()
}

func (s *Scheduler) globalTask() {
	// Countdown updates ride the poller's onUpdate callback, so a poll
	// that kept the previous snapshot never restarts the ticker.
	s.Global.Poll(s.Ctx)
}

func (s *Scheduler) userTask() {
	s.User.Poll(s.Ctx)
}

func (s *Scheduler) feedTask() {
	s.Feed.Refresh(s.Ctx)
}

// Snapshot assembles the current derived view from all components.
func (s *Scheduler) Snapshot() session.View {
	g, _ := s.Global.State()
	u, _ := s.User.Position()
	remaining, active := s.Countdown.Remaining()
	status := ""
	if s.Session != nil {
		status = s.Session.Status()
	}
	return session.BuildView(g, u, remaining, active, status)
}
