// internal/scheduler/poller.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

// Poller periodically executes schedules whose scheduled_at has passed.
// It rides the same dispatch path as the manual execute endpoint, so the
// state machine and tally semantics are identical; races between the poller
// and a manual execute resolve to one winner via the schedule claim.
type Poller struct {
	ScheduleRepo repository.ScheduleRepositoryInterface
	Dispatch     *service.DispatchService
	Interval     time.Duration
	Log          *zap.Logger

	cron *cron.Cron
}

func (p *Poller) Start() error {
	p.cron = cron.New()
	spec := fmt.Sprintf("@every %s", p.Interval)
	if _, err := p.cron.AddFunc(spec, p.run); err != nil {
		return fmt.Errorf("register poll job: %w", err)
	}
	p.cron.Start()
	p.Log.Info("schedule poller started", zap.Duration("interval", p.Interval))
	return nil
}

func (p *Poller) Stop() {
	if p.cron != nil {
		<-p.cron.Stop().Done()
	}
}

func (p *Poller) run() {
	due, err := p.ScheduleRepo.ListDue(time.Now())
	if err != nil {
		p.Log.Error("failed to list due schedules", zap.Error(err))
		return
	}

	for _, d := range due {
		result, err := p.Dispatch.Execute(context.Background(), d.ID, d.OwnerID)
		if err != nil {
			// Lost races (a manual execute or cancel got there first) and
			// empty subscriber lists are routine here, not faults.
			var it *appErrors.InvalidTransitionError
			var ap *appErrors.AlreadyProcessingError
			var ns *appErrors.NoSubscribersError
			if errors.As(err, &it) || errors.As(err, &ap) || errors.As(err, &ns) {
				p.Log.Debug("skipping due schedule", zap.String("schedule_id", d.ID), zap.Error(err))
				continue
			}
			p.Log.Error("scheduled dispatch failed", zap.String("schedule_id", d.ID), zap.Error(err))
			continue
		}

		p.Log.Info("scheduled dispatch completed",
			zap.String("schedule_id", d.ID),
			zap.Int("total", result.Total),
			zap.Int("success", result.Success),
			zap.Int("failed", result.Failed),
		)
	}
}
