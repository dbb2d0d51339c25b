// internal/service/template_service.go
package service

import (
	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
)

type TemplateService struct {
	TemplateRepo repository.TemplateRepositoryInterface
}

func (s *TemplateService) Create(ownerID int, title, content, channelType string) (*model.Template, error) {
	missing := []string{}
	if title == "" {
		missing = append(missing, "title")
	}
	if content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return nil, appErrors.NewValidation(missing...)
	}

	ch, err := model.ParseChannel(channelType)
	if err != nil {
		return nil, appErrors.NewValidation("type")
	}

	t := &model.Template{UserID: ownerID, Title: title, Content: content, Type: ch}
	if err := s.TemplateRepo.Create(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) List(ownerID int) ([]model.Template, error) {
	return s.TemplateRepo.List(ownerID)
}

func (s *TemplateService) Get(id, ownerID int) (*model.Template, error) {
	return s.TemplateRepo.GetByID(id, ownerID)
}

func (s *TemplateService) Update(ownerID, id int, title, content, channelType string) (*model.Template, error) {
	t, err := s.TemplateRepo.GetByID(id, ownerID)
	if err != nil {
		return nil, err
	}

	if title != "" {
		t.Title = title
	}
	if content != "" {
		t.Content = content
	}
	if channelType != "" {
		ch, err := model.ParseChannel(channelType)
		if err != nil {
			return nil, appErrors.NewValidation("type")
		}
		t.Type = ch
	}

	if err := s.TemplateRepo.Update(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) Delete(ownerID, id int) error {
	return s.TemplateRepo.Delete(id, ownerID)
}
