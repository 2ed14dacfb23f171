// Package response writes the {code, message, data} envelope every endpoint returns.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope. Code is 0 on success and the HTTP status otherwise.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(data interface{}) Response {
	return Response{Code: 0, Message: "success", Data: data}
}

func failure(status int, message string) Response {
	return Response{Code: status, Message: message}
}

// Success writes data with 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, ok(data))
}

// Created writes a newly recorded resource with 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, ok(data))
}

// Error writes an error envelope with the given HTTP status
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, failure(status, message))
}

// Abort is Error for middleware: it also stops the handler chain
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, failure(status, message))
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// ServiceUnavailable is for transient storage failures the client may retry
func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, http.StatusServiceUnavailable, message)
}
