// internal/service/schedule_service.go
package service

import (
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
)

// ScheduleService owns schedule creation, listing, and cancellation. The
// execute path lives in DispatchService.
type ScheduleService struct {
	ScheduleRepo repository.ScheduleRepositoryInterface
	Log          *zap.Logger
}

// Create binds a campaign and template to a planned send. scheduledAt is
// RFC3339. campaign/template ownership is verified by the store.
func (s *ScheduleService) Create(ownerID, campaignID, templateID int, scheduledAt string) (*model.Schedule, error) {
	at, err := time.Parse(time.RFC3339, scheduledAt)
	if err != nil {
		return nil, appErrors.NewValidation("scheduled_at")
	}

	sched, err := s.ScheduleRepo.Create(campaignID, templateID, ownerID, at)
	if err != nil {
		return nil, err
	}

	s.Log.Info("schedule created",
		zap.String("schedule_id", sched.ID),
		zap.Int("campaign_id", campaignID),
		zap.Int("template_id", templateID),
	)
	return sched, nil
}

func (s *ScheduleService) List(ownerID int) ([]model.ScheduleDetail, error) {
	return s.ScheduleRepo.List(ownerID)
}

// Cancel moves a pending schedule to cancelled. Terminal schedules fail with
// InvalidTransition; ownership misses with NotFound.
func (s *ScheduleService) Cancel(ownerID int, id string) error {
	if _, err := s.ScheduleRepo.GetByID(id, ownerID); err != nil {
		return err
	}
	if _, err := s.ScheduleRepo.Transition(id, model.ScheduleCancelled, nil); err != nil {
		return err
	}

	s.Log.Info("schedule cancelled", zap.String("schedule_id", id))
	return nil
}
