package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/folioview/folioview/internal/assets"
)

// ShellHandler serves the viewer shell assets cache-first so the UI loads
// even when the asset origin is down.
type ShellHandler struct {
	assets *assets.Service
}

func NewShellHandler(svc *assets.Service) *ShellHandler {
	return &ShellHandler{assets: svc}
}

// Register routes at the engine root
func (h *ShellHandler) Register(r *gin.Engine) {
	r.GET("/shell/*filepath", h.Serve)
}

func (h *ShellHandler) Serve(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("filepath"), "/")
	if path == "" {
		path = "index.html"
	}
	body, ctype, err := h.assets.Serve(c.Request.Context(), "/"+path)
	if err != nil {
		if errors.Is(err, assets.ErrAssetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	c.Data(http.StatusOK, ctype, body)
}
