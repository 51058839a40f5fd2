// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"net/http"

	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the error part of the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the body of every response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries pagination details.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes 200 with items and pagination meta.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

// BadRequest writes 400 VALIDATION_FAILED.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, string(apperror.KindValidation), message)
}

// Error maps err to its status and kind. Errors outside the taxonomy are
// reported as INTERNAL without their message.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	if e, ok := apperror.As(err); ok {
		abort(c, e.HTTPStatus(), string(e.Kind), e.Message)
		return
	}
	abort(c, http.StatusInternalServerError, string(apperror.KindInternal), "internal server error")
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}
