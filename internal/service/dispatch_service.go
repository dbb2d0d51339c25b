// internal/service/dispatch_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/campaignhub-backend/internal/delivery"
	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/metrics"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/render"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
)

// DispatchService executes a schedule: it fans the template out to every
// subscriber of the campaign, tallies per-recipient outcomes, and finalizes
// the schedule state. Per-recipient failures are expected and never abort
// the batch.
type DispatchService struct {
	ScheduleRepo   repository.ScheduleRepositoryInterface
	SubscriberRepo repository.SubscriberRepositoryInterface
	Gateway        *delivery.Gateway
	Metrics        *metrics.Metrics
	Log            *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// claim is the cheap in-process reservation; the durable cross-process
// guard is ScheduleRepo.Claim. This one only spares concurrent requests in
// the same process a round-trip to the store.
func (s *DispatchService) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		s.inflight = make(map[string]struct{})
	}
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *DispatchService) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

// releaseDurable hands the store claim back when a run bails out before
// sending anything, so the schedule can be executed later.
func (s *DispatchService) releaseDurable(id string) {
	if err := s.ScheduleRepo.Release(id); err != nil {
		s.Log.Error("failed to release schedule claim", zap.String("schedule_id", id), zap.Error(err))
	}
}

// Execute runs one dispatch for the schedule, on behalf of its owner.
//
// The schedule ends up `sent` whenever the subscriber loop completes,
// including with every delivery failed: `sent` records that execution was
// attempted and completed, not that every message arrived. The counts in
// the result carry the real outcome.
func (s *DispatchService) Execute(ctx context.Context, scheduleID string, ownerID int) (*model.DispatchResult, error) {
	if !s.claim(scheduleID) {
		return nil, appErrors.NewAlreadyProcessing(scheduleID)
	}
	defer s.release(scheduleID)

	sched, err := s.ScheduleRepo.GetByID(scheduleID, ownerID)
	if err != nil {
		return nil, err
	}
	if sched.Status != model.SchedulePending {
		return nil, appErrors.NewInvalidTransition(sched.Status)
	}

	// Take the durable claim before any send happens. Another process (an
	// API replica, the poller) racing on the same schedule loses here, so
	// the subscriber set is fanned out at most once system-wide.
	if err := s.ScheduleRepo.Claim(sched.ID); err != nil {
		return nil, err
	}

	subscribers, err := s.SubscriberRepo.ListByCampaign(sched.CampaignID)
	if err != nil {
		s.releaseDurable(sched.ID)
		return nil, err
	}
	if len(subscribers) == 0 {
		s.releaseDurable(sched.ID)
		return nil, appErrors.NewNoSubscribers(sched.CampaignID)
	}

	subject := fmt.Sprintf("%s - %s", sched.CampaignTitle, sched.TemplateTitle)
	result := &model.DispatchResult{Total: len(subscribers)}

	for _, sub := range subscribers {
		msg := delivery.Message{
			To:      recipientFor(sched.TemplateType, sub),
			Subject: subject,
			Body:    render.Render(sched.TemplateContent, sub),
		}

		if err := s.Gateway.Send(ctx, sched.TemplateType, msg); err != nil {
			result.Failed++
			s.Metrics.MessagesFailed.WithLabelValues(string(sched.TemplateType)).Inc()
			s.Log.Warn("delivery failed",
				zap.String("schedule_id", sched.ID),
				zap.String("recipient", msg.To),
				zap.Error(err),
			)
			continue
		}
		result.Success++
		s.Metrics.MessagesSent.WithLabelValues(string(sched.TemplateType)).Inc()
	}

	now := time.Now()
	if _, err := s.ScheduleRepo.Transition(sched.ID, model.ScheduleSent, &now); err != nil {
		// The only transition that can legitimately beat this one is a
		// cancel racing the fan-out; the dispatch itself completed, so
		// report the tally and leave the cancelled state alone. Anything
		// else losing the CAS means the claim was violated and must surface.
		var it *appErrors.InvalidTransitionError
		if !errors.As(err, &it) || it.Status != model.ScheduleCancelled {
			return nil, err
		}
		s.Log.Warn("schedule cancelled during dispatch",
			zap.String("schedule_id", sched.ID),
		)
	}

	s.Metrics.DispatchRuns.Inc()
	s.Log.Info("dispatch completed",
		zap.String("schedule_id", sched.ID),
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func recipientFor(ch model.Channel, sub model.Subscriber) string {
	if ch == model.ChannelSMS {
		return sub.Phone
	}
	return sub.Email
}
