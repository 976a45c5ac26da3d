package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/osonapteka/backoffice/internal/database/doctors"
	"github.com/osonapteka/backoffice/internal/database/messages"
	"github.com/osonapteka/backoffice/internal/entities"
)

// MessagesController handles admin broadcasts to doctors. Creating a message
// records the recipient list; actual delivery happens in the Telegram bot,
// which reports back through MarkDelivered.
type MessagesController struct {
	messages *messages.Repository
	doctors  *doctors.Repository
}

func NewMessagesController(messagesRepo *messages.Repository, doctorsRepo *doctors.Repository) *MessagesController {
	return &MessagesController{
		messages: messagesRepo,
		doctors:  doctorsRepo,
	}
}

type createMessageRequest struct {
	Content   string `json:"content" binding:"required"`
	SentBy    string `json:"sent_by"`
	DoctorIDs []uint `json:"doctor_ids"` // empty means all active doctors
}

type deliveredRequest struct {
	DoctorID uint   `json:"doctor_id" binding:"required"`
	ChatID   string `json:"chat_id"`
}

func (mc *MessagesController) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	list, err := mc.messages.ListRecent(limit)
	if err != nil {
		respondInternalError(c, err, "list messages")
		return
	}
	respondData(c, list)
}

func (mc *MessagesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	message, err := mc.messages.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "message")
			return
		}
		respondInternalError(c, err, "get message")
		return
	}
	respondData(c, message)
}

func (mc *MessagesController) Create(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.SentBy == "" {
		req.SentBy = "admin"
	}

	recipients, err := mc.resolveRecipients(req.DoctorIDs)
	if err != nil {
		respondInternalError(c, err, "create message")
		return
	}
	if len(recipients) == 0 {
		respondBadRequest(c, "no recipients")
		return
	}

	message, err := mc.messages.Create(req.Content, req.SentBy, recipients)
	if err != nil {
		respondInternalError(c, err, "create message")
		return
	}
	respondCreated(c, message)
}

// MarkDelivered is called by the bot after it pushed the message to a chat.
func (mc *MessagesController) MarkDelivered(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req deliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := mc.messages.MarkDelivered(id, req.DoctorID, req.ChatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "recipient")
			return
		}
		respondInternalError(c, err, "mark delivered")
		return
	}
	respondMessage(c, "delivery recorded")
}

func (mc *MessagesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := mc.messages.Delete(id); err != nil {
		respondInternalError(c, err, "delete message")
		return
	}
	respondMessage(c, "message deleted")
}

func (mc *MessagesController) resolveRecipients(doctorIDs []uint) ([]entities.MessageRecipient, error) {
	all, err := mc.doctors.List()
	if err != nil {
		return nil, err
	}

	wanted := make(map[uint]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		wanted[id] = true
	}

	now := time.Now()
	var recipients []entities.MessageRecipient
	for _, doctor := range all {
		if len(doctorIDs) > 0 && !wanted[doctor.ID] {
			continue
		}
		if len(doctorIDs) == 0 && !doctor.IsCurrentlyActive() {
			continue
		}
		recipients = append(recipients, entities.MessageRecipient{
			DoctorID:   doctor.ID,
			DoctorName: doctor.Name,
			DoctorCode: doctor.Code,
			SentAt:     now,
		})
	}
	return recipients, nil
}
