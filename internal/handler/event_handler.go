package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/service"
	"github.com/jengzang/fieldtrack-backend-go/pkg/response"
)

// EventHandler handles duty event requests
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// PostEvent handles POST /api/v1/subjects/:subjectId/events
func (h *EventHandler) PostEvent(c *gin.Context) {
	var req models.CreateDutyEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.Record(c.Request.Context(), c.Param("subjectId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, event)
}
