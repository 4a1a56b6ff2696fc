package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

func Page(c *gin.Context, data, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: message})
}

// Error writes the failure envelope. errors may be nil.
func Error(c *gin.Context, httpStatus int, message string, errors interface{}) {
	c.JSON(httpStatus, APIResponse{
		Success: false,
		Message: message,
		Errors:  errors,
	})
}
