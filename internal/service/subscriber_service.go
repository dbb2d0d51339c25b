// internal/service/subscriber_service.go
package service

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
)

type SubscriberService struct {
	SubscriberRepo repository.SubscriberRepositoryInterface
	CampaignRepo   repository.CampaignRepositoryInterface
}

// Subscribe adds a subscriber to a public (active) campaign. source is "qr"
// or "link"; anything else is rejected.
func (s *SubscriberService) Subscribe(campaignID int, name, email, phone, source string) (*model.Subscriber, error) {
	missing := []string{}
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" || !strings.Contains(email, "@") {
		missing = append(missing, "email")
	}
	if phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return nil, appErrors.NewValidation(missing...)
	}
	if source != "" && source != "qr" && source != "link" {
		return nil, appErrors.NewValidation("source")
	}

	if _, err := s.CampaignRepo.GetPublic(campaignID); err != nil {
		return nil, err
	}

	sub := &model.Subscriber{
		CampaignID: campaignID,
		Name:       name,
		Email:      email,
		Phone:      phone,
		Source:     source,
	}
	if err := s.SubscriberRepo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListForOwner returns the subscribers of a campaign after verifying the
// caller owns it.
func (s *SubscriberService) ListForOwner(ownerID, campaignID int) ([]model.Subscriber, error) {
	if _, err := s.CampaignRepo.GetByID(campaignID, ownerID); err != nil {
		return nil, err
	}
	return s.SubscriberRepo.ListByCampaign(campaignID)
}

// ExportCSV writes the campaign's subscribers as CSV.
func (s *SubscriberService) ExportCSV(w io.Writer, ownerID, campaignID int) error {
	subs, err := s.ListForOwner(ownerID, campaignID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "email", "phone", "source", "created_at"}); err != nil {
		return err
	}
	for _, sub := range subs {
		record := []string{sub.Name, sub.Email, sub.Phone, sub.Source, sub.CreatedAt.Format(time.RFC3339)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
