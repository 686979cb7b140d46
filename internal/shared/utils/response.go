package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

// APIResponse is the single envelope every endpoint returns. Exactly one of
// Data and Error is set.
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

// ErrorInfo carries the taxonomy kind as Type and the machine-readable
// reason (already_applied, not_owner, ...) clients branch on.
type ErrorInfo struct {
	Type    string `json:"type"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type ListResponse struct {
	Items      any   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewListResponse fills TotalPages from total and pageSize.
func NewListResponse(items any, total int64, page, pageSize int) ListResponse {
	return ListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	}
}

// CursorResponse is a page of a cursor-ordered sequence. Next is empty at the end.
type CursorResponse struct {
	Items any    `json:"items"`
	Next  string `json:"next,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, APIResponse{Success: true, Data: data, Message: message})
}

// CreatedResponse answers 201; the optional message replaces the generic one.
func CreatedResponse(c *gin.Context, data any, message ...string) {
	SuccessResponse(c, http.StatusCreated, firstOr(message, "Resource created successfully"), data)
}

func ListSuccessResponse(c *gin.Context, items any, total int64, page, pageSize int, message ...string) {
	SuccessResponse(c, http.StatusOK, firstOr(message, ""), NewListResponse(items, total, page, pageSize))
}

func CursorSuccessResponse(c *gin.Context, items any, next string) {
	SuccessResponse(c, http.StatusOK, "", CursorResponse{Items: items, Next: next})
}

// ErrorResponse is for middleware that rejects a request before any use case
// runs and so has no AppError to hand.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{Error: &ErrorInfo{Type: "error", Message: message}})
}

// ErrorResponseWithError maps an AppError to its status and body. Anything
// else is reported as a bare 500 without the underlying message.
func ErrorResponseWithError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		c.JSON(http.StatusInternalServerError, APIResponse{Error: &ErrorInfo{
			Type:    string(errors.ErrorTypeInternal),
			Message: "Internal server error occurred",
		}})
		return
	}
	c.JSON(appErr.Code, APIResponse{Error: &ErrorInfo{
		Type:    string(appErr.Type),
		Reason:  appErr.Reason,
		Message: appErr.Message,
		Details: appErr.Details,
	}})
}

func firstOr(values []string, def string) string {
	if len(values) > 0 {
		return values[0]
	}
	return def
}
