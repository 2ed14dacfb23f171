package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
	"github.com/jengzang/fieldtrack-backend-go/internal/service"
	"github.com/jengzang/fieldtrack-backend-go/pkg/response"
)

// IngestHandler handles device fix uploads
type IngestHandler struct {
	ingestService *service.IngestService
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingestService *service.IngestService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// ingestBody accepts either a single fix or {"fixes": [...]}
type ingestBody struct {
	models.IngestFixRequest
	Fixes []models.IngestFixRequest `json:"fixes"`
}

// PostFixes handles POST /api/v1/subjects/:subjectId/fixes
func (h *IngestHandler) PostFixes(c *gin.Context) {
	var body ingestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	fixes := body.Fixes
	if len(fixes) == 0 {
		if !body.HasPosition() {
			response.BadRequest(c, "latitude and longitude are required")
			return
		}
		fixes = []models.IngestFixRequest{body.IngestFixRequest}
	}

	results, err := h.ingestService.IngestBatch(c.Request.Context(), c.Param("subjectId"), fixes)
	if err != nil {
		respondError(c, err)
		return
	}

	accepted := 0
	for _, r := range results {
		if r.Accepted {
			accepted++
		}
	}

	response.Success(c, gin.H{
		"results":  results,
		"accepted": accepted,
	})
}
