// internal/controller/dashboard_controller.go
package controller

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/campaignhub-backend/internal/middleware"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

type DashboardController struct {
	DashboardService *service.DashboardService
	Log              *zap.Logger
}

func (c *DashboardController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.DashboardService.Stats(middleware.OwnerID(r))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}
