// Package response writes the JSON envelopes shared by every slideshow route.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

// Response is the envelope for successful requests
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorResponse is the envelope for failed requests. Retryable tells the
// display it may offer a retry action.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      int    `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// SuccessResponse sends data with status and an optional message
func SuccessResponse(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

// OK sends a 200 with data and no message
func OK(c *gin.Context, data any) {
	SuccessResponse(c, http.StatusOK, "", data)
}

// ErrorResponseWithMessage aborts the request with status and message
func ErrorResponseWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      status,
		Retryable: status == http.StatusServiceUnavailable || status == http.StatusBadGateway,
		RequestID: c.GetString(RequestIDKey),
	})
}

func BadRequestError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusBadRequest, message)
}

func NotFoundError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusNotFound, message)
}

// ConflictError reports a control message that no longer matches the display,
// such as a video end for a slide that already moved on.
func ConflictError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusInternalServerError, message)
}

// BadGatewayError reports a failed call to the event backend
func BadGatewayError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusBadGateway, message)
}

// ServiceUnavailableError reports that the display is running on stale data
func ServiceUnavailableError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusServiceUnavailable, message)
}
