package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gehenna/gehenna/internal/names"
	"github.com/gehenna/gehenna/internal/names/service"
)

// RegisterNameRoutes registers the registry API, the health check and the
// service banner on r.
func RegisterNameRoutes(r gin.IRouter, svc service.Service) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "backend"})
	})

	r.GET("/health", func(c *gin.Context) {
		if err := svc.Health(c.Request.Context()); err != nil {
			_ = c.Error(err).SetMeta(gin.H{"op": "health"})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "database": "disconnected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
	})

	api := r.Group("/api")

	api.GET("/get", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			_ = c.Error(err).SetMeta(gin.H{"op": "list"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	add := func(c *gin.Context, raw string) {
		rec, err := svc.Add(c.Request.Context(), raw)
		if err != nil {
			_ = c.Error(err).SetMeta(gin.H{"op": "add", "input": raw})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": fmt.Sprintf("'%s' added successfully!", rec.Name),
			"name":    rec.Name,
			"id":      rec.ID,
		})
	}

	api.POST("/add/:name", func(c *gin.Context) {
		add(c, c.Param("name"))
	})

	api.POST("/add", func(c *gin.Context) {
		var req struct {
			Name *string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == nil {
			_ = c.Error(&names.ValidationError{Reason: `Request body must be JSON with a "name" field`}).
				SetMeta(gin.H{"op": "add"})
			return
		}
		add(c, *req.Name)
	})

	api.DELETE("/delete/:name", func(c *gin.Context) {
		raw := c.Param("name")
		name, n, err := svc.Delete(c.Request.Context(), raw)
		if err != nil {
			_ = c.Error(err).SetMeta(gin.H{"op": "delete", "input": raw})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("'%s' deleted successfully!", name),
			"name":    name,
			"deleted": n,
		})
	})

	search := func(c *gin.Context, query string) {
		list, err := svc.Search(c.Request.Context(), query)
		if err != nil {
			_ = c.Error(err).SetMeta(gin.H{"op": "search", "input": query})
			return
		}
		c.JSON(http.StatusOK, list)
	}
	api.GET("/search/:query", func(c *gin.Context) { search(c, c.Param("query")) })
	api.GET("/search", func(c *gin.Context) { search(c, c.Query("q")) })
}

// RegisterSnapshotRoute exposes POST /api/snapshot.
func RegisterSnapshotRoute(r gin.IRouter, s *service.Snapshotter) {
	r.POST("/api/snapshot", func(c *gin.Context) {
		snap, err := s.Export(c.Request.Context())
		if err != nil {
			_ = c.Error(err).SetMeta(gin.H{"op": "snapshot"})
			return
		}
		c.JSON(http.StatusCreated, snap)
	})
}

// StatusFor maps registry errors to an HTTP status and a client-safe message.
// Store errors never expose their cause.
func StatusFor(err error) (int, string) {
	var ve *names.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Reason
	case errors.Is(err, names.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, names.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, names.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Service temporarily unavailable"
	case errors.Is(err, names.ErrStoreOperation):
		return http.StatusInternalServerError, "Database operation failed"
	}
	return http.StatusInternalServerError, "Internal server error"
}
