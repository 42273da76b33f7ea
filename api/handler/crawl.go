package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/spindle/models"
	"github.com/use-agent/spindle/spider"
)

// Crawl returns a handler for POST /api/v1/crawl. It crawls one URL
// synchronously and returns the full result.
func Crawl(sp *spider.Spider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CrawlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "url is required",
				},
			})
			return
		}

		result, err := sp.Crawl(c.Request.Context(), req.URL)
		if err != nil {
			status, detail := errorToResponse(err)
			c.JSON(status, gin.H{"error": detail})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// errorToResponse maps internal error codes to HTTP statuses.
func errorToResponse(err error) (int, models.ErrorDetail) {
	var ce *models.CrawlError
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError, models.ErrorDetail{
			Code:    models.ErrCodeInternal,
			Message: err.Error(),
		}
	}
	switch ce.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout, *ce.ToDetail()
	case models.ErrCodeNavigation:
		return http.StatusBadGateway, *ce.ToDetail()
	case models.ErrCodeConfig, models.ErrCodeInvalidInput:
		return http.StatusBadRequest, *ce.ToDetail()
	default:
		return http.StatusInternalServerError, *ce.ToDetail()
	}
}
