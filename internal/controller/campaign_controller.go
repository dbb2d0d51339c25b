// internal/controller/campaign_controller.go
package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/middleware"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

type CampaignController struct {
	CampaignService   *service.CampaignService
	SubscriberService *service.SubscriberService
	Log               *zap.Logger
}

type campaignBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Incentive   string `json:"incentive"`
	Status      string `json:"status"`
}

func (c *CampaignController) Create(w http.ResponseWriter, r *http.Request) {
	var body campaignBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, c.Log, appErrors.NewValidation("body"))
		return
	}

	campaign, err := c.CampaignService.Create(
		middleware.OwnerID(r), body.Title, body.Description, body.Incentive, model.CampaignStatus(body.Status),
	)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"campaign": campaign})
}

func (c *CampaignController) List(w http.ResponseWriter, r *http.Request) {
	f := repository.CampaignFilter{
		Query:  r.URL.Query().Get("query"),
		Status: r.URL.Query().Get("status"),
		SortBy: r.URL.Query().Get("sort_by"),
		Order:  r.URL.Query().Get("order"),
	}

	campaigns, err := c.CampaignService.List(middleware.OwnerID(r), f)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"campaigns": campaigns})
}

func (c *CampaignController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	campaign, err := c.CampaignService.Get(id, middleware.OwnerID(r))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"campaign": campaign})
}

func (c *CampaignController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	var body campaignBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, c.Log, appErrors.NewValidation("body"))
		return
	}

	campaign, err := c.CampaignService.Update(
		middleware.OwnerID(r), id, body.Title, body.Description, body.Incentive, model.CampaignStatus(body.Status),
	)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"campaign": campaign})
}

func (c *CampaignController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	if err := c.CampaignService.Delete(middleware.OwnerID(r), id); err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "campaign deleted"})
}

// QRCode serves the campaign landing link as a PNG QR code.
func (c *CampaignController) QRCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	png, err := c.CampaignService.QRCodePNG(middleware.OwnerID(r), id)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (c *CampaignController) SendQR(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	if err := c.CampaignService.SendQRByEmail(r.Context(), middleware.OwnerID(r), id); err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "QR code sent"})
}

func (c *CampaignController) Subscribers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	subs, err := c.SubscriberService.ListForOwner(middleware.OwnerID(r), id)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"subscribers": subs})
}

func (c *CampaignController) ExportSubscribers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	// Render into a buffer first so an ownership miss or store failure
	// still produces a JSON error response instead of a half-written CSV.
	var buf bytes.Buffer
	if err := c.SubscriberService.ExportCSV(&buf, middleware.OwnerID(r), id); err != nil {
		writeError(w, c.Log, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=subscribers_%d.csv", id))
	w.Write(buf.Bytes())
}

// PublicGet serves the unauthenticated landing page data.
func (c *CampaignController) PublicGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	campaign, err := c.CampaignService.GetPublic(id)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"campaign": campaign})
}

func (c *CampaignController) PublicSubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	var body struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		Phone  string `json:"phone"`
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, c.Log, appErrors.NewValidation("body"))
		return
	}

	sub, err := c.SubscriberService.Subscribe(id, body.Name, body.Email, body.Phone, body.Source)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"subscriber": sub})
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, appErrors.NewValidation("id")
	}
	return id, nil
}
