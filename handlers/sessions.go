package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folioview/folioview/internal/config"
	"github.com/folioview/folioview/internal/recents/service"
	"github.com/folioview/folioview/internal/tokens"
	"github.com/folioview/folioview/internal/viewstate"
	"github.com/folioview/folioview/pkg/logger"
	"github.com/folioview/folioview/pkg/middleware"
)

// SessionsHandler manages view sessions: open, resume, record progress, close.
type SessionsHandler struct {
	cfg        *config.Config
	viewSvc    *viewstate.Service
	recentsSvc service.Service
}

func NewSessionsHandler(cfg *config.Config, viewSvc *viewstate.Service, recentsSvc service.Service) *SessionsHandler {
	return &SessionsHandler{cfg: cfg, viewSvc: viewSvc, recentsSvc: recentsSvc}
}

// Register routes under /api/v1. Mutating an existing session requires its
// Bearer resume token; open and resume carry their credentials in the body.
func (h *SessionsHandler) Register(rg *gin.RouterGroup) {
	s := rg.Group("/sessions")
	s.POST("", h.Open)
	s.POST("/resume", h.Resume)
	authed := s.Group("", middleware.TokenMiddleware(tokens.NewVerifier(h.cfg)))
	authed.PATCH("/:token", h.Advance)
	authed.DELETE("/:token", h.Close)
}

// Open starts a view session on a stored document and hands out a resume token.
func (h *SessionsHandler) Open(c *gin.Context) {
	var req struct {
		DocumentID string `json:"documentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recs, err := h.recentsSvc.ListRecent(c.Request.Context())
	if err != nil {
		c.JSON(storeStatus(err), gin.H{"error": err.Error()})
		return
	}
	known := false
	for _, rec := range recs {
		if rec.ID == req.DocumentID {
			known = true
			break
		}
	}
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	sess, err := h.viewSvc.Open(c.Request.Context(), req.DocumentID, h.cfg.Sessions.TTL)
	if err != nil {
		logger.Errorf("failed to open view session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return
	}
	resume, err := tokens.GenerateResumeToken(h.cfg, sess, h.cfg.Sessions.TTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create resume token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"sessionId":   sess.Token,
		"resumeToken": resume,
		"documentId":  sess.Document,
		"page":        sess.Page,
		"expiresAt":   sess.ExpiresAt,
	})
}

// Resume exchanges a resume token for the stored session state.
func (h *SessionsHandler) Resume(c *gin.Context) {
	var req struct {
		ResumeToken string `json:"resumeToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	revoked, err := viewstate.IsResumeTokenRevoked(c.Request.Context(), req.ResumeToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revocation check failed"})
		return
	}
	if revoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
		return
	}

	claims, err := tokens.ParseResumeToken(h.cfg, req.ResumeToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid resume token", "details": err.Error()})
		return
	}
	sess, err := h.viewSvc.Resume(c.Request.Context(), claims.SessionToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resume failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionId":  sess.Token,
		"documentId": sess.Document,
		"page":       sess.Page,
		"expiresAt":  sess.ExpiresAt,
	})
}

// ownsSession rejects requests whose verified resume token belongs to a
// different session than the one addressed by the route.
func ownsSession(c *gin.Context, token string) bool {
	v, ok := c.Get("claims")
	if !ok {
		return true
	}
	cm, ok := v.(map[string]interface{})
	if !ok {
		return true
	}
	if sub, _ := cm["sub"].(string); sub != "" && sub != token {
		c.JSON(http.StatusForbidden, gin.H{"error": "resume token is for another session"})
		return false
	}
	return true
}

// Advance records the page the viewer is currently on.
func (h *SessionsHandler) Advance(c *gin.Context) {
	token := c.Param("token")
	if !ownsSession(c, token) {
		return
	}
	var req struct {
		Page *int `json:"page" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || *req.Page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a non-negative integer"})
		return
	}
	if err := h.viewSvc.Advance(c.Request.Context(), token, *req.Page); err != nil {
		if err == viewstate.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "advance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": *req.Page})
}

// Close ends a session. The bearer resume token on the request is revoked
// for its remaining validity.
func (h *SessionsHandler) Close(c *gin.Context) {
	token := c.Param("token")
	if !ownsSession(c, token) {
		return
	}
	if err := h.viewSvc.Close(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "close failed"})
		return
	}

	auth := c.GetHeader("Authorization")
	var resume string
	if n, _ := fmt.Sscanf(auth, "Bearer %s", &resume); n == 1 && resume != "" {
		if ttl := tokens.RemainingValidity(resume); ttl > 0 {
			if err := viewstate.RevokeResumeToken(c.Request.Context(), resume, ttl); err != nil {
				logger.Warnf("resume token revocation failed: %v", err)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
