package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/osonapteka/backoffice/internal/database/doctors"
	"github.com/osonapteka/backoffice/internal/database/sales"
	"github.com/osonapteka/backoffice/internal/entities"
)

// DoctorsController handles doctor account management.
type DoctorsController struct {
	doctors *doctors.Repository
	sales   *sales.Repository
}

func NewDoctorsController(doctorsRepo *doctors.Repository, salesRepo *sales.Repository) *DoctorsController {
	return &DoctorsController{
		doctors: doctorsRepo,
		sales:   salesRepo,
	}
}

type createDoctorRequest struct {
	Name       string `json:"name" binding:"required"`
	Profession string `json:"profession"`
	Login      string `json:"login" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
	Code       string `json:"code" binding:"required"`
}

type updateDoctorRequest struct {
	Name       *string `json:"name"`
	Profession *string `json:"profession"`
	IsActive   *bool   `json:"is_active"`
}

type activateRequest struct {
	Months      int    `json:"months" binding:"required,min=1,max=120"`
	ActivatedBy string `json:"activated_by"`
}

func (dc *DoctorsController) List(c *gin.Context) {
	list, err := dc.doctors.List()
	if err != nil {
		respondInternalError(c, err, "list doctors")
		return
	}
	respondData(c, list)
}

func (dc *DoctorsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	doctor, err := dc.doctors.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "doctor")
			return
		}
		respondInternalError(c, err, "get doctor")
		return
	}
	respondData(c, doctor)
}

func (dc *DoctorsController) Create(c *gin.Context) {
	var req createDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	doctor := &entities.Doctor{
		Name:       req.Name,
		Profession: req.Profession,
		Login:      req.Login,
		Code:       req.Code,
		IsActive:   true,
	}
	if err := dc.doctors.Create(doctor, req.Password); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondConflict(c, "login or code already taken")
			return
		}
		respondInternalError(c, err, "create doctor")
		return
	}
	respondCreated(c, doctor)
}

func (dc *DoctorsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	doctor, err := dc.doctors.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "doctor")
			return
		}
		respondInternalError(c, err, "update doctor")
		return
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Profession != nil {
		doctor.Profession = *req.Profession
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}
	if err := dc.doctors.Update(doctor); err != nil {
		respondInternalError(c, err, "update doctor")
		return
	}
	respondData(c, doctor)
}

func (dc *DoctorsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := dc.doctors.Delete(id); err != nil {
		respondInternalError(c, err, "delete doctor")
		return
	}
	respondMessage(c, "doctor deleted")
}

// Activate grants the doctor N months of access counted from now and records
// an activation history entry.
func (dc *DoctorsController) Activate(c *gin.Context) {
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

	doctor, err := dc.doctors.Activate(id, req.Months, req.ActivatedBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "doctor")
			return
		}
		respondInternalError(c, err, "activate doctor")
		return
	}
	respondData(c, doctor)
}

// Sales lists the recent sales attributed to the doctor's code.
func (dc *DoctorsController) Sales(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	doctor, err := dc.doctors.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "doctor")
			return
		}
		respondInternalError(c, err, "doctor sales")
		return
	}

	records, err := dc.sales.ListByDoctorCode(doctor.Code, 100)
	if err != nil {
		respondInternalError(c, err, "doctor sales")
		return
	}
	respondData(c, records)
}
