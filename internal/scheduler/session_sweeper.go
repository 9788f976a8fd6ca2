package scheduler

import (
	"time"

	"github.com/ikkim/salonflow-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Sweeper drops expired reservation sessions.
type Sweeper interface {
	Sweep(now time.Time) int
}

// SessionSweeper evicts expired in-memory reservation sessions on a cron
// schedule. Redis-backed sessions expire on their own and need no sweeper.
type SessionSweeper struct {
	cron  *cron.Cron
	store Sweeper
	spec  string
	now   func() time.Time
}

func NewSessionSweeper(store Sweeper, spec string) *SessionSweeper {
	return &SessionSweeper{
		cron:  cron.New(),
		store: store,
		spec:  spec,
		now:   time.Now,
	}
}

// Start registers the sweep job and starts the cron runner
func (s *SessionSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for session sweep", err, logger.Fields{"spec": s.spec})
		return err
	}

	s.cron.Start()
	logger.Info("Session sweeper started", logger.Fields{"spec": s.spec})
	return nil
}

// RunOnce sweeps immediately.
func (s *SessionSweeper) RunOnce() {
	if removed := s.store.Sweep(s.now()); removed > 0 {
		logger.Info("Expired reservation sessions removed", logger.Fields{"removed": removed})
	}
}

func (s *SessionSweeper) Stop() {
	logger.Info("Stopping session sweeper...")
	<-s.cron.Stop().Done()
	logger.Info("Session sweeper stopped")
}
