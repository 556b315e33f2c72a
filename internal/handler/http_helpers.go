package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pressroom/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondValidation(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondStoreError 把存储层错误映射为 JSON 状态码。
func respondStoreError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrArticleNotFound):
		respondError(c, http.StatusNotFound, "Article not found.")
	case errors.Is(err, service.ErrSettingsNotFound):
		respondError(c, http.StatusNotFound, "Settings not found.")
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func idParam(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}
