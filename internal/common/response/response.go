package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/letitbe-trn/oneroom-app/internal/common/domain"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, "bad_request", message)
}

// Error maps err to an HTTP status using the domain sentinels it matches.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		abort(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrValidation):
		abort(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrConflict):
		abort(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrExternal):
		_ = c.Error(err)
		abort(c, http.StatusBadGateway, "external_error", err.Error())
	default:
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}
