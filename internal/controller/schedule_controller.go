// internal/controller/schedule_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/middleware"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

type ScheduleController struct {
	ScheduleService *service.ScheduleService
	DispatchService *service.DispatchService
	Log             *zap.Logger
}

func (c *ScheduleController) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CampaignID  int    `json:"campaign_id"`
		TemplateID  int    `json:"template_id"`
		ScheduledAt string `json:"scheduled_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, c.Log, appErrors.NewValidation("body"))
		return
	}

	missing := []string{}
	if body.CampaignID == 0 {
		missing = append(missing, "campaign_id")
	}
	if body.TemplateID == 0 {
		missing = append(missing, "template_id")
	}
	if body.ScheduledAt == "" {
		missing = append(missing, "scheduled_at")
	}
	if len(missing) > 0 {
		writeError(w, c.Log, appErrors.NewValidation(missing...))
		return
	}

	sched, err := c.ScheduleService.Create(middleware.OwnerID(r), body.CampaignID, body.TemplateID, body.ScheduledAt)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "campaign scheduled",
		"schedule": sched,
	})
}

func (c *ScheduleController) List(w http.ResponseWriter, r *http.Request) {
	schedules, err := c.ScheduleService.List(middleware.OwnerID(r))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"schedules": schedules})
}

func (c *ScheduleController) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.ScheduleService.Cancel(middleware.OwnerID(r), id); err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "schedule cancelled"})
}

func (c *ScheduleController) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := c.DispatchService.Execute(r.Context(), id, middleware.OwnerID(r))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "campaign dispatched",
		"stats":   result,
	})
}
