package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/osonapteka/backoffice/internal/database/suppliers"
	"github.com/osonapteka/backoffice/internal/entities"
)

// SuppliersController handles supplier account management.
type SuppliersController struct {
	suppliers *suppliers.Repository
}

func NewSuppliersController(suppliersRepo *suppliers.Repository) *SuppliersController {
	return &SuppliersController{suppliers: suppliersRepo}
}

type createSupplierRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type updateSupplierRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

func (sc *SuppliersController) List(c *gin.Context) {
	list, err := sc.suppliers.List()
	if err != nil {
		respondInternalError(c, err, "list suppliers")
		return
	}
	respondData(c, list)
}

func (sc *SuppliersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	supplier, err := sc.suppliers.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "supplier")
			return
		}
		respondInternalError(c, err, "get supplier")
		return
	}
	respondData(c, supplier)
}

func (sc *SuppliersController) Create(c *gin.Context) {
	var req createSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	supplier := &entities.Supplier{
		Name:     req.Name,
		Username: req.Username,
		IsActive: true,
	}
	if err := sc.suppliers.Create(supplier, req.Password); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondConflict(c, "username already taken")
			return
		}
		respondInternalError(c, err, "create supplier")
		return
	}
	respondCreated(c, supplier)
}

func (sc *SuppliersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	supplier, err := sc.suppliers.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "supplier")
			return
		}
		respondInternalError(c, err, "update supplier")
		return
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}
	if err := sc.suppliers.Update(supplier); err != nil {
		respondInternalError(c, err, "update supplier")
		return
	}
	respondData(c, supplier)
}

func (sc *SuppliersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := sc.suppliers.Delete(id); err != nil {
		respondInternalError(c, err, "delete supplier")
		return
	}
	respondMessage(c, "supplier deleted")
}

func (sc *SuppliersController) Activate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.ActivatedBy == "" {
		req.ActivatedBy = "admin"
	}

	supplier, err := sc.suppliers.Activate(id, req.Months, req.ActivatedBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "supplier")
			return
		}
		respondInternalError(c, err, "activate supplier")
		return
	}
	respondData(c, supplier)
}
