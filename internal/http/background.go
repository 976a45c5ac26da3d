package http

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/osonapteka/backoffice/internal/database/cursor"
	"github.com/osonapteka/backoffice/internal/database/inventory"
	"github.com/osonapteka/backoffice/internal/database/runs"
	"github.com/osonapteka/backoffice/internal/database/sales"
	"github.com/osonapteka/backoffice/internal/entities"
	"github.com/osonapteka/backoffice/internal/syncer"
)

// BackgroundController exposes the sync engine over HTTP: status, manual
// triggers and cursor resets.
type BackgroundController struct {
	engine    *syncer.Engine
	inventory *inventory.Repository
	sales     *sales.Repository
	cursors   *cursor.Repository
	runs      *runs.Repository
}

func NewBackgroundController(engine *syncer.Engine, invRepo *inventory.Repository, salesRepo *sales.Repository, cursors *cursor.Repository, runsRepo *runs.Repository) *BackgroundController {
	return &BackgroundController{
		engine:    engine,
		inventory: invRepo,
		sales:     salesRepo,
		cursors:   cursors,
		runs:      runsRepo,
	}
}

type refreshRequest struct {
	Date string `json:"date"`
}

// Status returns the run status together with database aggregates and the
// persisted cursors.
func (bc *BackgroundController) Status(c *gin.Context) {
	salesCount, err := bc.sales.Count()
	if err != nil {
		respondInternalError(c, err, "background status")
		return
	}
	salesWithItems, err := bc.sales.CountWithItems()
	if err != nil {
		respondInternalError(c, err, "background status")
		return
	}
	inventoryCount, err := bc.inventory.Count()
	if err != nil {
		respondInternalError(c, err, "background status")
		return
	}

	cursors := gin.H{}
	for _, rt := range []entities.ResourceType{entities.ResourceRemains, entities.ResourceSales} {
		cur, err := bc.cursors.GetOrCreate(rt)
		if err != nil {
			respondInternalError(c, err, "background status")
			return
		}
		cursors[string(rt)] = cur
	}

	respondData(c, gin.H{
		"refresh": bc.engine.Status(),
		"database": gin.H{
			"sales_count":      salesCount,
			"sales_with_items": salesWithItems,
			"inventory_count":  inventoryCount,
		},
		"cursors": cursors,
	})
}

// RefreshStatus returns only the in-memory run status, cheap enough to poll.
func (bc *BackgroundController) RefreshStatus(c *gin.Context) {
	respondData(c, bc.engine.Status())
}

// ManualRefresh fires a full sync in the background. The date is validated
// here so a bad request fails fast instead of inside the goroutine.
func (bc *BackgroundController) ManualRefresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	date, err := syncer.ResolveDate(req.Date)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if bc.engine.Status().IsRunning {
		respondConflict(c, "refresh already in progress")
		return
	}

	go bc.engine.RunFullSync(context.Background(), req.Date, "manual")
	respondData(c, gin.H{"message": "refresh started", "date": date})
}

// SalesRefresh fires a sales-only sync in the background.
func (bc *BackgroundController) SalesRefresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	date, err := syncer.ResolveDate(req.Date)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if bc.engine.Status().IsRunning {
		respondConflict(c, "refresh already in progress")
		return
	}

	go bc.engine.RunSalesOnly(context.Background(), req.Date, "manual")
	respondData(c, gin.H{"message": "sales refresh started", "date": date})
}

// StopRefresh requests an early stop. The current page or item batch still
// finishes.
func (bc *BackgroundController) StopRefresh(c *gin.Context) {
	bc.engine.Stop()
	respondMessage(c, "stop requested")
}

// History lists the most recent recorded runs.
func (bc *BackgroundController) History(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}
	list, err := bc.runs.ListRecent(limit)
	if err != nil {
		respondInternalError(c, err, "run history")
		return
	}
	respondData(c, list)
}

// ResetCursor drops the persisted sync position of one resource so the next
// run starts from scratch.
func (bc *BackgroundController) ResetCursor(c *gin.Context) {
	resourceType := entities.ResourceType(c.Param("type"))
	switch resourceType {
	case entities.ResourceRemains, entities.ResourceSales:
	default:
		respondBadRequest(c, "unknown resource type")
		return
	}

	if err := bc.engine.ResetCursor(resourceType); err != nil {
		respondInternalError(c, err, "reset cursor")
		return
	}
	respondMessage(c, "cursor reset")
}
