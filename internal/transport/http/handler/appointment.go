package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mindhaven/internal/app"
	"mindhaven/internal/transport/http/middleware"
	"mindhaven/internal/transport/http/response"
)

type AppointmentHandler struct {
	appointmentService *app.AppointmentService
}

type RequestAppointmentRequest struct {
	TicketID    uint      `json:"ticket_id" binding:"required,gt=0"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Mode        string    `json:"mode" binding:"required"`
}

func NewAppointmentHandler(appointmentService *app.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

func (h *AppointmentHandler) Request(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req RequestAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	appointment, err := h.appointmentService.Request(app.RequestAppointmentInput{
		Caller:      identity,
		TicketID:    req.TicketID,
		ScheduledAt: req.ScheduledAt,
		Mode:        req.Mode,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		case errors.Is(err, app.ErrTicketNotFound):
			response.Error(c, http.StatusNotFound, response.CodeTicketNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "request appointment failed")
		}
		return
	}

	response.OK(c, appointment)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	appointments, err := h.appointmentService.ListByUser(identity.UserID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list appointments failed")
		return
	}

	response.OK(c, appointments)
}
