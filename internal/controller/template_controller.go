// internal/controller/template_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/middleware"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

type TemplateController struct {
	TemplateService *service.TemplateService
	Log             *zap.Logger
}

type templateBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	var body templateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, c.Log, appErrors.NewValidation("body"))
		return
	}

	tmpl, err := c.TemplateService.Create(middleware.OwnerID(r), body.Title, body.Content, body.Type)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"template": tmpl})
}

func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	templates, err := c.TemplateService.List(middleware.OwnerID(r))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	tmpl, err := c.TemplateService.Get(id, middleware.OwnerID(r))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"template": tmpl})
}

func (c *TemplateController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	var body templateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, c.Log, appErrors.NewValidation("body"))
		return
	}

	tmpl, err := c.TemplateService.Update(middleware.OwnerID(r), id, body.Title, body.Content, body.Type)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"template": tmpl})
}

func (c *TemplateController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	if err := c.TemplateService.Delete(middleware.OwnerID(r), id); err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "template deleted"})
}
