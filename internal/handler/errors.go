package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/fieldtrack-backend-go/internal/service"
	"github.com/jengzang/fieldtrack-backend-go/pkg/response"
)

// respondError maps service errors onto the response envelope
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrRetrieval):
		response.ServiceUnavailable(c, "Data is temporarily unavailable, please retry")
	default:
		response.InternalError(c, err.Error())
	}
}
