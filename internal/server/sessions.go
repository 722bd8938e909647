package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dshills/wordsmith/internal/analyzer"
	"github.com/dshills/wordsmith/internal/app"
	"github.com/dshills/wordsmith/internal/engine/cursor"
	"github.com/dshills/wordsmith/internal/engine/projector"
	"github.com/dshills/wordsmith/internal/engine/span"
	"github.com/dshills/wordsmith/internal/notify"
)

// OpenSessionRequest is the body of POST /v1/sessions.
// With only DocumentID the stored document is opened; with Content the
// session starts from that text.
type OpenSessionRequest struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title" binding:"max=200"`
	Content    *string `json:"content"`
}

// EditRequest replaces [Start, End) with Text. A positive Version rejects
// the edit if the buffer has moved on.
type EditRequest struct {
	Version int64  `json:"version" binding:"gte=0"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Text    string `json:"text"`
}

// CaretRequest moves the caret or selection.
type CaretRequest struct {
	Anchor int `json:"anchorOffset"`
	Focus  int `json:"focusOffset"`
}

// ApplyRequest names the version the suggestion was shown at.
type ApplyRequest struct {
	Version int64 `json:"version" binding:"required,gt=0"`
}

// OutcomeResponse describes an analysis run.
type OutcomeResponse struct {
	State     string `json:"state"`
	Version   int64  `json:"version"`
	Published int    `json:"published"`
	Dropped   int    `json:"dropped"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// AnalyzeSessionResponse is returned by POST /v1/sessions/:id/analyze.
type AnalyzeSessionResponse struct {
	Outcome OutcomeResponse `json:"outcome"`
	Session app.View        `json:"session"`
}

// ProjectionResponse is the render projection of one version.
type ProjectionResponse struct {
	Version    int64               `json:"version"`
	Length     int                 `json:"length"`
	Segments   []projector.Segment `json:"segments"`
	Suppressed []uuid.UUID         `json:"suppressed"`
}

func lookupSession(c *gin.Context, a *app.Application) (*app.Session, bool) {
	s, err := a.Session(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return s, true
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		badRequest(c, "invalid "+param+": "+err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// OpenSession opens an editing session.
func OpenSession(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OpenSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		s, err := a.OpenSession(c.Request.Context(), app.OpenRequest{
			DocumentID: req.DocumentID,
			Title:      req.Title,
			Content:    req.Content,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, s.View())
	}
}

// ListSessions returns every open session.
func ListSessions(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := a.Sessions()
		views := make([]app.View, len(sessions))
		for i, s := range sessions {
			views[i] = s.View()
		}
		c.JSON(http.StatusOK, gin.H{"sessions": views})
	}
}

// GetSession returns one session.
func GetSession(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, a)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, s.View())
	}
}

// CloseSession closes a session and saves its content.
func CloseSession(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.CloseSession(c.Request.Context(), c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// EditSession applies a user edit.
func EditSession(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, a)
		if !ok {
			return
		}

		var req EditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if _, err := s.Edit(req.Version, span.New(req.Start, req.End), req.Text); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.View())
	}
}

// SetCaret moves the caret.
func SetCaret(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, a)
		if !ok {
			return
		}

		var req CaretRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := s.SetCaret(cursor.New(req.Anchor, req.Focus)); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.View())
	}
}

// AnalyzeSession analyzes the session text now and waits for the outcome.
func AnalyzeSession(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, a)
		if !ok {
			return
		}

		out, err := s.Analyze(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, AnalyzeSessionResponse{Outcome: outcomeResponse(out), Session: s.View()})
	}
}

func outcomeResponse(out analyzer.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		State:     out.State.String(),
		Version:   out.Version,
		Published: out.Published,
		Dropped:   out.Dropped,
		LatencyMs: out.Latency.Milliseconds(),
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}
	return resp
}

// ApplySuggestion applies a suggestion. A request for an outdated version
// fails with 409 and leaves the buffer untouched.
func ApplySuggestion(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, a)
		if !ok {
			return
		}
		id, ok := parseID(c, "sid")
		if !ok {
			return
		}

		var req ApplyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if _, err := s.Apply(c.Request.Context(), id, req.Version); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.View())
	}
}

// DismissSuggestion removes a suggestion without editing the text.
func DismissSuggestion(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, a)
		if !ok {
			return
		}
		id, ok := parseID(c, "sid")
		if !ok {
			return
		}

		if !s.Dismiss(id) {
			c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "suggestion not found", Code: "suggestion_not_found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GetProjection returns the text split into plain and decorated segments.
func GetProjection(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, a)
		if !ok {
			return
		}

		p := s.Project()
		suppressed := p.Suppressed()
		if suppressed == nil {
			suppressed = []uuid.UUID{}
		}
		c.JSON(http.StatusOK, ProjectionResponse{
			Version:    p.Version(),
			Length:     p.Len(),
			Segments:   p.Collect(),
			Suppressed: suppressed,
		})
	}
}

// ListNotifications returns the session's undismissed notifications.
func ListNotifications(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, a)
		if !ok {
			return
		}

		notes := a.Notifier().Recent(s.ID())
		if notes == nil {
			notes = []notify.Notification{}
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notes})
	}
}

// DismissNotification removes one notification.
func DismissNotification(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, a)
		if !ok {
			return
		}
		id, ok := parseID(c, "nid")
		if !ok {
			return
		}

		if !a.Notifier().Dismiss(s.ID(), id) {
			c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "notification not found", Code: "notification_not_found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
