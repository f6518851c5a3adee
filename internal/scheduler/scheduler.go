package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/sonaeru/sonaeru/internal/utils"
	"github.com/sonaeru/sonaeru/pkg/savings"
)

// Scheduler drives the time-based work of the engine: currently one job, the
// monthly savings tick. The tick itself is idempotent per month, so a missed
// or repeated firing is harmless.
type Scheduler struct {
	cronEngine      *cron.Cron
	savingsService  savings.Service
	clock           utils.Clock
	monthlyTickSpec string
}

func NewScheduler(savingsService savings.Service, clock utils.Clock, monthlyTickSpec string) *Scheduler {
	return &Scheduler{
		cronEngine:      cron.New(cron.WithLocation(time.UTC)),
		savingsService:  savingsService,
		clock:           clock,
		monthlyTickSpec: monthlyTickSpec,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.monthlyTickSpec, func() {
		now := s.clock.Now()
		log.Infof("running monthly savings tick for %d-%02d", now.Year(), now.Month())
		if err := s.savingsService.ApplyMonthlyTick(context.Background(), now.Year(), now.Month()); err != nil {
			log.Errorf("monthly savings tick failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cronEngine.Start()
	log.Infof("scheduler started, monthly tick spec %q", s.monthlyTickSpec)
	return nil
}

// Stop waits for a running job to finish before returning.
func (s *Scheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	log.Info("scheduler stopped")
}
