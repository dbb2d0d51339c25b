// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/unclebandit/campaignhub-backend/internal/delivery"
	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	UserRepo     repository.UserRepositoryInterface
	Gateway      *delivery.Gateway
	// PublicBaseURL is the root for landing links encoded into QR codes.
	PublicBaseURL string
	Log           *zap.Logger
}

func (s *CampaignService) Create(ownerID int, title, description, incentive string, status model.CampaignStatus) (*model.Campaign, error) {
	if title == "" {
		return nil, appErrors.NewValidation("title")
	}
	if status != "" && status != model.CampaignActive && status != model.CampaignInactive {
		return nil, appErrors.NewValidation("status")
	}

	c := &model.Campaign{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Incentive:   incentive,
		Status:      status,
	}
	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) List(ownerID int, f repository.CampaignFilter) ([]model.Campaign, error) {
	return s.CampaignRepo.List(ownerID, f)
}

func (s *CampaignService) Get(id, ownerID int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(id, ownerID)
}

func (s *CampaignService) GetPublic(id int) (*model.Campaign, error) {
	return s.CampaignRepo.GetPublic(id)
}

func (s *CampaignService) Update(ownerID, id int, title, description, incentive string, status model.CampaignStatus) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(id, ownerID)
	if err != nil {
		return nil, err
	}

	if title != "" {
		c.Title = title
	}
	c.Description = description
	c.Incentive = incentive
	if status != "" {
		if status != model.CampaignActive && status != model.CampaignInactive {
			return nil, appErrors.NewValidation("status")
		}
		c.Status = status
	}

	if err := s.CampaignRepo.Update(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) Delete(ownerID, id int) error {
	return s.CampaignRepo.Delete(id, ownerID)
}

// PublicURL is the landing page a subscriber reaches by scanning the
// campaign's QR code or following its link.
func (s *CampaignService) PublicURL(campaignID int) string {
	return fmt.Sprintf("%s/c/%d", s.PublicBaseURL, campaignID)
}

// QRCodePNG renders the campaign's landing link as a PNG QR code.
func (s *CampaignService) QRCodePNG(ownerID, campaignID int) ([]byte, error) {
	if _, err := s.CampaignRepo.GetByID(campaignID, ownerID); err != nil {
		return nil, err
	}
	return qrcode.Encode(s.PublicURL(campaignID), qrcode.Medium, 256)
}

// SendQRByEmail mails the campaign's landing link to the owner so they can
// print or forward it.
func (s *CampaignService) SendQRByEmail(ctx context.Context, ownerID, campaignID int) error {
	c, err := s.CampaignRepo.GetByID(campaignID, ownerID)
	if err != nil {
		return err
	}
	owner, err := s.UserRepo.GetByID(ownerID)
	if err != nil {
		return err
	}

	url := s.PublicURL(campaignID)
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your campaign <strong>%s</strong> is live. Share this link or its QR code with your audience:</p><p><a href="%s">%s</a></p>`,
		owner.Name, c.Title, url, url,
	)

	err = s.Gateway.Send(ctx, model.ChannelEmail, delivery.Message{
		To:      owner.Email,
		Subject: fmt.Sprintf("QR code for %s", c.Title),
		Body:    body,
	})
	if err != nil {
		s.Log.Error("failed to send qr email", zap.Int("campaign_id", campaignID), zap.Error(err))
	}
	return err
}
