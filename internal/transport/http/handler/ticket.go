package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mindhaven/internal/app"
	"mindhaven/internal/transport/http/middleware"
	"mindhaven/internal/transport/http/response"
)

type TicketHandler struct {
	ticketService *app.TicketService
}

type RaiseTicketRequest struct {
	SessionID uint `json:"session_id" binding:"required,gt=0"`
	Severity  int  `json:"severity"`
}

func NewTicketHandler(ticketService *app.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

func (h *TicketHandler) Raise(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req RaiseTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	ticket, err := h.ticketService.Raise(identity, req.SessionID, req.Severity)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrActiveTicketExists):
			response.Error(c, http.StatusConflict, response.CodeActiveTicket, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "raise ticket failed")
		}
		return
	}

	response.OK(c, ticket)
}

func (h *TicketHandler) ListOpen(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	tickets, err := h.ticketService.ListOpen(identity)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list open tickets failed")
		}
		return
	}

	response.OK(c, tickets)
}

func (h *TicketHandler) Claim(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	ticketID, err := parseUintParam(c, "id")
	if err != nil || ticketID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid ticket id")
		return
	}

	ticket, err := h.ticketService.Claim(identity, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		case errors.Is(err, app.ErrTicketNotFound):
			response.Error(c, http.StatusNotFound, response.CodeTicketNotFound, err.Error())
		case errors.Is(err, app.ErrTicketAlreadyClaimed):
			response.Error(c, http.StatusConflict, response.CodeTicketClaimed, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "claim ticket failed")
		}
		return
	}

	response.OK(c, ticket)
}

func (h *TicketHandler) Resolve(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	ticketID, err := parseUintParam(c, "id")
	if err != nil || ticketID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid ticket id")
		return
	}

	ticket, err := h.ticketService.Resolve(identity, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		case errors.Is(err, app.ErrTicketNotFound):
			response.Error(c, http.StatusNotFound, response.CodeTicketNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidTransition):
			response.Error(c, http.StatusConflict, response.CodeInvalidTransition, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "resolve ticket failed")
		}
		return
	}

	response.OK(c, ticket)
}

func (h *TicketHandler) Status(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	ticketID, err := parseUintParam(c, "id")
	if err != nil || ticketID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid ticket id")
		return
	}

	snapshot, err := h.ticketService.Status(identity, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		case errors.Is(err, app.ErrTicketNotFound):
			response.Error(c, http.StatusNotFound, response.CodeTicketNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch ticket status failed")
		}
		return
	}

	response.OK(c, snapshot)
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	s := c.Param(key)
	u, err := strconv.ParseUint(s, 10, 64)
	return uint(u), err
}
