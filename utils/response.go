package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the body written for failed requests.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error writes a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	ctx.JSON(status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// AbortWithError writes a standard error response and stops the handler chain.
func AbortWithError(ctx *gin.Context, status int, code int, message string) {
	ctx.AbortWithStatusJSON(status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
