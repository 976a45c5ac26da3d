package http

import (
	"github.com/gin-gonic/gin"

	"github.com/osonapteka/backoffice/internal/settingsstore"
)

// SettingsController exposes the admin-tunable runtime settings.
type SettingsController struct {
	settings *settingsstore.SettingsStore
}

func NewSettingsController(settings *settingsstore.SettingsStore) *SettingsController {
	return &SettingsController{settings: settings}
}

type updateSettingsRequest struct {
	LowStockThreshold    *float64 `json:"low_stock_threshold"`
	NotificationsEnabled *bool    `json:"notifications_enabled"`
}

func (sc *SettingsController) Get(c *gin.Context) {
	respondData(c, gin.H{
		"low_stock_threshold":   sc.settings.GetLowStockThreshold(),
		"notifications_enabled": sc.settings.GetNotificationsEnabled(),
	})
}

func (sc *SettingsController) Update(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			respondBadRequest(c, "low_stock_threshold must not be negative")
			return
		}
		if err := sc.settings.SetLowStockThreshold(*req.LowStockThreshold); err != nil {
			respondInternalError(c, err, "update settings")
			return
		}
	}
	if req.NotificationsEnabled != nil {
		if err := sc.settings.SetNotificationsEnabled(*req.NotificationsEnabled); err != nil {
			respondInternalError(c, err, "update settings")
			return
		}
	}

	sc.Get(c)
}
