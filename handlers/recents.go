package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/folioview/folioview/internal/preview"
	"github.com/folioview/folioview/internal/recents"
	"github.com/folioview/folioview/internal/recents/service"
	"github.com/folioview/folioview/internal/render"
	"github.com/folioview/folioview/pkg/logger"
)

// RecentsHandler exposes the recents store plus page previews over HTTP.
type RecentsHandler struct {
	svc      service.Service
	previews *preview.Cache
	opener   render.Opener
}

func NewRecentsHandler(svc service.Service, previews *preview.Cache, opener render.Opener) *RecentsHandler {
	return &RecentsHandler{svc: svc, previews: previews, opener: opener}
}

// Register routes under /api/v1
func (h *RecentsHandler) Register(rg *gin.RouterGroup) {
	d := rg.Group("/documents")
	d.POST("", h.Save)
	d.GET("", h.List)
	d.GET("/:id/content", h.Content)
	d.GET("/:id/pages/:page", h.Page)
}

func storeStatus(err error) int {
	if recents.IsKind(err, recents.KindUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Save accepts a multipart upload, validates it opens as a document and
// stores it. An unreadable payload is rejected without touching the store.
// The stored name is the uploaded filename unless a "name" field overrides it.
func (h *RecentsHandler) Save(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	name := c.PostForm("name")
	if name == "" {
		name = fh.Filename
	}
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	payload, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(payload) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty file"})
		return
	}

	doc, err := h.opener.Open(payload)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid document", "details": err.Error()})
		return
	}
	pages := doc.PageCount()
	if err := doc.Close(); err != nil {
		logger.Warnf("close %s after validation: %v", name, err)
	}

	if err := h.svc.Save(c.Request.Context(), name, payload); err != nil {
		c.JSON(storeStatus(err), gin.H{"error": err.Error()})
		return
	}

	out := gin.H{"name": name, "pages": pages}
	if recs, err := h.svc.ListRecent(c.Request.Context()); err == nil {
		for _, rec := range recs {
			if rec.Name == name {
				out["id"] = rec.ID
				out["savedAt"] = rec.SavedAt
				break
			}
		}
	}
	c.JSON(http.StatusCreated, out)
}

// List returns recents metadata, most recently saved first.
func (h *RecentsHandler) List(c *gin.Context) {
	recs, err := h.svc.ListRecent(c.Request.Context())
	if err != nil {
		c.JSON(storeStatus(err), gin.H{"error": err.Error()})
		return
	}
	out := make([]map[string]interface{}, 0, len(recs))
	for _, rec := range recs {
		out = append(out, map[string]interface{}{
			"id":      rec.ID,
			"name":    rec.Name,
			"savedAt": rec.SavedAt,
			"size":    len(rec.Payload),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *RecentsHandler) findRecord(c *gin.Context, id string) (recents.Record, bool) {
	recs, err := h.svc.ListRecent(c.Request.Context())
	if err != nil {
		c.JSON(storeStatus(err), gin.H{"error": err.Error()})
		return recents.Record{}, false
	}
	for _, rec := range recs {
		if rec.ID == id {
			return rec, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	return recents.Record{}, false
}

// Content streams the stored document bytes.
func (h *RecentsHandler) Content(c *gin.Context) {
	rec, ok := h.findRecord(c, c.Param("id"))
	if !ok {
		return
	}
	c.Data(http.StatusOK, "application/pdf", rec.Payload)
}

// Page serves one rendered page as PNG. Pages are 1-based on the wire.
// Optional ?dpi= selects resolution.
func (h *RecentsHandler) Page(c *gin.Context) {
	rec, ok := h.findRecord(c, c.Param("id"))
	if !ok {
		return
	}
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	dpi := 0.0
	if q := c.Query("dpi"); q != "" {
		dpi, err = strconv.ParseFloat(q, 64)
		if err != nil || dpi <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dpi"})
			return
		}
	}

	png, source, err := h.previews.Page(c.Request.Context(), rec, page-1, dpi)
	if err != nil {
		switch {
		case errors.Is(err, render.ErrPageOutOfRange):
			c.JSON(http.StatusNotFound, gin.H{"error": "no such page"})
		case errors.Is(err, render.ErrInvalidDocument):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid document", "details": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.Header("X-Preview-Source", source)
	c.Data(http.StatusOK, "image/png", png)
}
