package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Root(c *gin.Context) {
	c.String(http.StatusOK, "Hello World!")
}

func NotFound(c *gin.Context) {
	c.String(http.StatusNotFound, "Page not found")
}
