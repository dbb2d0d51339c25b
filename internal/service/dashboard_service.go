// internal/service/dashboard_service.go
package service

import (
	"github.com/unclebandit/campaignhub-backend/internal/repository"
)

type DashboardStats struct {
	Campaigns struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	} `json:"campaigns"`
	Subscribers struct {
		Total    int            `json:"total"`
		BySource map[string]int `json:"by_source"`
	} `json:"subscribers"`
}

type DashboardService struct {
	CampaignRepo   repository.CampaignRepositoryInterface
	SubscriberRepo repository.SubscriberRepositoryInterface
}

func (s *DashboardService) Stats(ownerID int) (*DashboardStats, error) {
	total, active, err := s.CampaignRepo.CountByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	subTotal, err := s.SubscriberRepo.CountByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	bySource, err := s.SubscriberRepo.CountBySource(ownerID)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	stats.Campaigns.Total = total
	stats.Campaigns.Active = active
	stats.Subscribers.Total = subTotal
	stats.Subscribers.BySource = bySource
	return stats, nil
}
