package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osonapteka/backoffice/internal/database/doctors"
	"github.com/osonapteka/backoffice/internal/database/inventory"
	"github.com/osonapteka/backoffice/internal/database/sales"
	"github.com/osonapteka/backoffice/internal/database/suppliers"
)

// DashboardController aggregates counters for the admin dashboard.
type DashboardController struct {
	inventory *inventory.Repository
	sales     *sales.Repository
	doctors   *doctors.Repository
	suppliers *suppliers.Repository
}

func NewDashboardController(invRepo *inventory.Repository, salesRepo *sales.Repository, doctorsRepo *doctors.Repository, suppliersRepo *suppliers.Repository) *DashboardController {
	return &DashboardController{
		inventory: invRepo,
		sales:     salesRepo,
		doctors:   doctorsRepo,
		suppliers: suppliersRepo,
	}
}

func (dc *DashboardController) Stats(c *gin.Context) {
	salesCount, err := dc.sales.Count()
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	salesWithItems, err := dc.sales.CountWithItems()
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	midnight := time.Now().Truncate(24 * time.Hour)
	salesToday, err := dc.sales.CountCreatedSince(midnight)
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	inventoryCount, err := dc.inventory.Count()
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	manufacturers, err := dc.inventory.CountManufacturers()
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	doctorCount, err := dc.doctors.Count()
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	supplierCount, err := dc.suppliers.Count()
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}

	respondData(c, gin.H{
		"sales": gin.H{
			"total":      salesCount,
			"with_items": salesWithItems,
			"today":      salesToday,
		},
		"inventory": gin.H{
			"total":         inventoryCount,
			"manufacturers": manufacturers,
		},
		"doctors":   doctorCount,
		"suppliers": supplierCount,
	})
}
