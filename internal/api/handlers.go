package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/blogsmith/internal/assembler"
	"github.com/jonesrussell/blogsmith/internal/pipeline"
	"github.com/jonesrussell/blogsmith/internal/writer"
)

// createDraft opens a new draft
// POST /api/v1/drafts
func (r *Router) createDraft(c *gin.Context) {
	var req struct {
		Topic    string `json:"topic"`
		Location string `json:"location"`
		Sport    string `json:"sport"`
	}
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": bindErr.Error(),
		})
		return
	}

	draft, err := r.service.CreateDraft(c.Request.Context(), req.Topic, req.Location, req.Sport)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// listDrafts returns all drafts, optionally filtered by status
// GET /api/v1/drafts?status=writing
func (r *Router) listDrafts(c *gin.Context) {
	drafts, err := r.service.ListDrafts(c.Request.Context(), c.Query("status"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"drafts": drafts,
		"count":  len(drafts),
	})
}

// getDraft retrieves a draft by ID
// GET /api/v1/drafts/:id
func (r *Router) getDraft(c *gin.Context) {
	draft, err := r.service.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// updateDraft edits the authoring context of a draft
// PATCH /api/v1/drafts/:id
func (r *Router) updateDraft(c *gin.Context) {
	var req pipeline.UpdateRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": bindErr.Error(),
		})
		return
	}

	draft, err := r.service.UpdateDraft(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// deleteDraft removes a draft
// DELETE /api/v1/drafts/:id
func (r *Router) deleteDraft(c *gin.Context) {
	if err := r.service.DeleteDraft(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// updateSources records which research sources later stages should use
// PATCH /api/v1/drafts/:id/sources
func (r *Router) updateSources(c *gin.Context) {
	var req struct {
		SelectedSourceIDs []string `json:"selected_source_ids"`
	}
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": bindErr.Error(),
		})
		return
	}

	draft, err := r.service.UpdateSourceSelection(c.Request.Context(), c.Param("id"), req.SelectedSourceIDs)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// runResearch gathers and attaches research for the draft topic
// POST /api/v1/drafts/:id/research
func (r *Router) runResearch(c *gin.Context) {
	draft, err := r.service.Research(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// runOutline plans section titles for the draft
// POST /api/v1/drafts/:id/outline
func (r *Router) runOutline(c *gin.Context) {
	var req struct {
		SectionCount int `json:"section_count"`
	}
	// The body is optional: an empty request uses the default count.
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request payload",
				"details": bindErr.Error(),
			})
			return
		}
	}

	titles, err := r.service.Outline(c.Request.Context(), c.Param("id"), req.SectionCount)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"titles": titles,
		"count":  len(titles),
	})
}

// writeSection drafts one section at the given outline position
// POST /api/v1/drafts/:id/sections/:index
func (r *Router) writeSection(c *gin.Context) {
	index, ok := parseIndex(c, "index")
	if !ok {
		return
	}

	var req struct {
		Title   string         `json:"title"`
		Options writer.Options `json:"options"`
	}
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": bindErr.Error(),
		})
		return
	}

	draft, err := r.service.WriteSection(c.Request.Context(), c.Param("id"), index, req.Title, req.Options)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// generateImage requests a featured image for the draft
// POST /api/v1/drafts/:id/image
func (r *Router) generateImage(c *gin.Context) {
	draft, err := r.service.GenerateImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

type assembleRequest struct {
	Overrides   *assembler.MetadataOverrides `json:"metadata,omitempty"`
	ForceStatus bool                         `json:"force_status,omitempty"`
}

func bindAssembleRequest(c *gin.Context) (*assembleRequest, bool) {
	req := &assembleRequest{}
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request payload",
				"details": bindErr.Error(),
			})
			return nil, false
		}
	}
	return req, true
}

// assemble combines the written sections into a validated document
// POST /api/v1/drafts/:id/assemble
func (r *Router) assemble(c *gin.Context) {
	req, ok := bindAssembleRequest(c)
	if !ok {
		return
	}

	result, err := r.service.Assemble(c.Request.Context(), c.Param("id"), req.Overrides, req.ForceStatus)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// publish assembles, validates and pushes the draft to the CMS
// POST /api/v1/drafts/:id/publish
func (r *Router) publish(c *gin.Context) {
	req, ok := bindAssembleRequest(c)
	if !ok {
		return
	}

	result, err := r.service.Publish(c.Request.Context(), c.Param("id"), req.Overrides)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
