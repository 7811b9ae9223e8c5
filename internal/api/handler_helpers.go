package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/blogsmith/internal/pipeline"
	"github.com/jonesrussell/blogsmith/internal/publisher"
	"github.com/jonesrussell/blogsmith/internal/store"
)

// parseIndex parses a non-negative section index from a path parameter.
func parseIndex(c *gin.Context, paramName string) (int, bool) {
	index, err := strconv.Atoi(c.Param(paramName))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Section index must be a non-negative integer",
		})
		return 0, false
	}
	return index, true
}

// handleServiceError maps pipeline errors onto HTTP statuses. Bad input is
// 400, unmet stage preconditions are 422, missing drafts are 404, and a
// downstream capability failing mid-stage is 502.
func handleServiceError(c *gin.Context, err error) {
	var valErr *pipeline.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "Draft failed validation",
			"problems": valErr.Problems,
		})
		return
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
	case errors.Is(err, pipeline.ErrTopicRequired),
		errors.Is(err, pipeline.ErrSectionTitleRequired),
		errors.Is(err, pipeline.ErrInvalidStatusFilter),
		errors.Is(err, store.ErrNoFields),
		errors.Is(err, store.ErrSectionIndex):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pipeline.ErrResearchRequired),
		errors.Is(err, publisher.ErrMissingFeaturedImage):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": stageErr.Error(),
				"stage": stageErr.Stage,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
