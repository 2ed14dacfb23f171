package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/service"
	"github.com/jengzang/fieldtrack-backend-go/internal/spatial"
	"github.com/jengzang/fieldtrack-backend-go/pkg/response"
)

// CheckpointHandler handles checkpoint verification and registry requests
type CheckpointHandler struct {
	checkpointService *service.CheckpointService
}

// NewCheckpointHandler creates a new checkpoint handler
func NewCheckpointHandler(checkpointService *service.CheckpointService) *CheckpointHandler {
	return &CheckpointHandler{checkpointService: checkpointService}
}

// Verify handles POST /api/v1/checkpoints/:checkpointId/verify.
// Every verdict, including not found, is a 200.
func (h *CheckpointHandler) Verify(c *gin.Context) {
	var req models.VerifyPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "latitude and longitude are required")
		return
	}

	position := spatial.Point{Lat: *req.Latitude, Lon: *req.Longitude}
	verdict, err := h.checkpointService.Verify(c.Request.Context(), position, c.Param("checkpointId"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, verdict)
}

// GetCheckpoint handles GET /api/v1/checkpoints/:checkpointId
func (h *CheckpointHandler) GetCheckpoint(c *gin.Context) {
	cp, err := h.checkpointService.Get(c.Request.Context(), c.Param("checkpointId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if cp == nil {
		response.NotFound(c, "Checkpoint not found")
		return
	}

	response.Success(c, cp)
}

// PutCheckpoint handles PUT /api/v1/checkpoints/:checkpointId
func (h *CheckpointHandler) PutCheckpoint(c *gin.Context) {
	var req models.UpsertCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cp, err := h.checkpointService.Upsert(c.Request.Context(), c.Param("checkpointId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, cp)
}
