package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayhub/service-booking/pkg/domain"
)

// Envelope is the standard JSON body for all API responses.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody carries the stable error code and a human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries paging metadata for list responses.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 response with a validation error body.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: domain.CodeValidation, Message: message},
	})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context) {
	Error(c, domain.NewUnauthorizedError())
}

// InternalError writes an opaque 500 response.
func InternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: domain.CodeInternal, Message: "internal server error"},
	})
}

// Error maps an application error to its HTTP status. Unrecognized errors
// become an opaque 500; their text stays out of the response body.
func Error(c *gin.Context, err error) {
	if appErr, ok := domain.AsAppError(err); ok {
		c.JSON(appErr.Status, Envelope{
			Success: false,
			Error:   &ErrorBody{Code: appErr.Code, Message: appErr.Message},
		})
		return
	}

	_ = c.Error(err)
	InternalError(c)
}
