package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/folioview/folioview/internal/database"
	"github.com/folioview/folioview/internal/recents/handler"
	"github.com/folioview/folioview/internal/recents/service"
)

// Store-only daemon: the recents API without the renderer, sessions or
// shell cache. Configured straight from the environment.
func main() {
	port := os.Getenv("RECENTS_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	maxRecents := 0
	if v := os.Getenv("RECENTS_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxRecents = n
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())

	var svc service.Service
	switch os.Getenv("RECENTS_BACKEND") {
	case "mongo":
		client, err := database.ConnectMongo(context.Background(), os.Getenv("MONGODB_URI"), 10*time.Second)
		if err != nil {
			log.Printf("warning: cannot connect to MongoDB (%v), using memory-backed store", err)
			svc = service.NewMemoryService(maxRecents)
		} else {
			db := os.Getenv("MONGODB_DATABASE")
			if db == "" {
				db = "folioview"
			}
			svc = service.NewMongoService(client.Database(db).Collection("recent_documents"), maxRecents)
		}
	case "memory":
		svc = service.NewMemoryService(maxRecents)
	default:
		path := os.Getenv("RECENTS_SQLITE_PATH")
		if path == "" {
			path = "folioview.db"
		}
		sqliteSvc, err := service.NewSQLiteService(path, maxRecents)
		if err != nil {
			log.Printf("warning: cannot open sqlite store at %s (%v), using memory-backed store", path, err)
			svc = service.NewMemoryService(maxRecents)
		} else {
			svc = sqliteSvc
		}
	}

	if err := svc.Initialize(context.Background()); err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	handler.RegisterRecentsRoutes(r, svc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	log.Printf("recents service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
