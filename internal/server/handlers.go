package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dshills/wordsmith/internal/analyzer"
	"github.com/dshills/wordsmith/internal/app"
	"github.com/dshills/wordsmith/internal/engine/suggestion"
	"github.com/dshills/wordsmith/internal/store"
)

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AnalyzeRequest is the body of POST /api/analyze-text.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse is the analyzer wire format.
type AnalyzeResponse struct {
	Suggestions []suggestion.Raw `json:"suggestions"`
}

// HandleAnalyzeText runs the analyzer on a text and returns its raw
// suggestions.
func HandleAnalyzeText(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Text is required"})
			return
		}

		raw, err := a.Analyze(c.Request.Context(), req.Text)
		if err != nil {
			msg := "Failed to analyze text"
			if errors.Is(err, analyzer.ErrContract) {
				msg = "Invalid response format from analyzer"
			}
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
			return
		}
		if raw == nil {
			raw = []suggestion.Raw{}
		}
		c.JSON(http.StatusOK, AnalyzeResponse{Suggestions: raw})
	}
}

// PutDocumentRequest is the body of PUT /v1/documents/:id.
type PutDocumentRequest struct {
	Title   string  `json:"title" binding:"max=200"`
	Content *string `json:"content" binding:"required"`
}

// ListDocuments returns every stored document, most recent first.
func ListDocuments(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := a.Store().List(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		if docs == nil {
			docs = []store.Document{}
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs})
	}
}

// GetDocument returns one stored document.
func GetDocument(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := a.Store().Load(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// PutDocument creates or replaces a stored document.
func PutDocument(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PutDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		var opts []store.SaveOption
		if req.Title != "" {
			opts = append(opts, store.WithTitle(req.Title))
		}
		doc, err := a.Store().Save(c.Request.Context(), c.Param("id"), *req.Content, opts...)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// DeleteDocument removes a stored document.
func DeleteDocument(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Store().Delete(c.Request.Context(), c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
