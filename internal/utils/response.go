package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// SendErrorResponse sends a standardized error response
func SendErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// SendSuccessResponse sends a standardized success response with data
func SendSuccessResponse(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}
