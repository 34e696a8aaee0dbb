package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every operation answers with HTTP 200 and a {success, ...} envelope; the
// boolean flag, not the status code, signals failure to the client.

func respondContent(c *gin.Context, content string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"content": content,
	})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

func respondError(c *gin.Context, err error) {
	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"message": err.Error(),
	})
}
