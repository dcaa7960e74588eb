package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folioview/folioview/internal/recents"
	"github.com/folioview/folioview/internal/recents/service"
)

func statusFor(err error) int {
	if recents.IsKind(err, recents.KindUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func RegisterRecentsRoutes(r *gin.Engine, svc service.Service) {
	r.GET("/api/recents", func(c *gin.Context) {
		recs, err := svc.ListRecent(c.Request.Context())
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		out := make([]map[string]interface{}, 0, len(recs))
		for _, rec := range recs {
			out = append(out, map[string]interface{}{"id": rec.ID, "name": rec.Name, "savedAt": rec.SavedAt})
		}
		c.JSON(http.StatusOK, out)
	})

	r.POST("/api/recents", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
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
		if err := svc.Save(c.Request.Context(), fh.Filename, payload); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"name": fh.Filename})
	})

	r.GET("/api/recents/:id/content", func(c *gin.Context) {
		id := c.Param("id")
		recs, err := svc.ListRecent(c.Request.Context())
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		for _, rec := range recs {
			if rec.ID == id {
				c.Data(http.StatusOK, "application/pdf", rec.Payload)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}
