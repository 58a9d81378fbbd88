package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexai/backend/llm"
	"github.com/lexai/backend/middleware"
	"github.com/lexai/backend/model"
	"github.com/lexai/backend/service"
)

// defaultMultipartMemory is used when no upload limit is configured.
const defaultMultipartMemory = 32 << 20

// multipartMemory returns how much of a multipart body may be held in
// memory. Handlers are given the upload limit so uploads never spill to
// temporary files.
func multipartMemory(limit int64) int64 {
	if limit <= 0 {
		return defaultMultipartMemory
	}
	return limit
}

// parseForm parses the request form up front so a body cut off by
// middleware.BodyLimit is reported instead of silently yielding empty
// fields. Plain url-encoded forms are accepted.
func parseForm(c *gin.Context, maxMemory int64) error {
	err := c.Request.ParseMultipartForm(maxMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// respondError maps a flow error to its HTTP status and body. Raw model
// output and upstream error text stay in the logs.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var rejection *model.ValidationError
	var parseErr *service.ParseError
	var upstream *service.UpstreamError

	switch {
	case isTooLarge(err):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Uploaded file too large"})
	case errors.Is(err, service.ErrInvalidDocument):
		badRequest(c, "Invalid document")
	case errors.Is(err, service.ErrNoChatInput):
		badRequest(c, "Must provide text or audio")
	case errors.As(err, &rejection):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error_type": rejection.ErrorType,
			"message":    rejection.Message,
		})
	case errors.Is(err, llm.ErrAudioUnsupported):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Audio questions are not supported by the configured model provider"})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "The model returned an unusable response",
			"request_id": middleware.GetRequestID(c),
		})
	case errors.As(err, &upstream):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":      "The model service is unavailable, please retry",
			"request_id": middleware.GetRequestID(c),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Internal server error",
			"request_id": middleware.GetRequestID(c),
		})
	}
}
