package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/fieldtrack-backend-go/internal/export"
	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/service"
	"github.com/jengzang/fieldtrack-backend-go/pkg/response"
)

// TimelineHandler handles timeline, stop and export requests
type TimelineHandler struct {
	timelineService *service.TimelineService
}

// NewTimelineHandler creates a new timeline handler
func NewTimelineHandler(timelineService *service.TimelineService) *TimelineHandler {
	return &TimelineHandler{timelineService: timelineService}
}

// GetTimeline handles GET /api/v1/subjects/:subjectId/timeline
func (h *TimelineHandler) GetTimeline(c *gin.Context) {
	var query models.DayQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Query parameter date is required")
		return
	}

	timeline, err := h.timelineService.GetDailyTimeline(c.Request.Context(), c.Param("subjectId"), query.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, timeline)
}

// GetStops handles GET /api/v1/subjects/:subjectId/stops
func (h *TimelineHandler) GetStops(c *gin.Context) {
	var query models.DayQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Query parameter date is required")
		return
	}

	stops, err := h.timelineService.GetStops(c.Request.Context(), c.Param("subjectId"), query.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"data":  stops,
		"count": len(stops),
	})
}

// ExportTimeline handles GET /api/v1/subjects/:subjectId/timeline/export
func (h *TimelineHandler) ExportTimeline(c *gin.Context) {
	var query models.DayQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Query parameter date is required")
		return
	}

	format, err := export.ParseFormat(query.Format)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	timeline, err := h.timelineService.GetDailyTimeline(c.Request.Context(), c.Param("subjectId"), query.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, timeline, h.timelineService.Location()); err != nil {
		response.InternalError(c, err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.Filename(timeline)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
