package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/folioview/folioview/handlers"
	"github.com/folioview/folioview/internal/assets"
	"github.com/folioview/folioview/internal/config"
	"github.com/folioview/folioview/internal/database"
	"github.com/folioview/folioview/internal/preview"
	"github.com/folioview/folioview/internal/recents/service"
	"github.com/folioview/folioview/internal/render"
	"github.com/folioview/folioview/internal/storage"
	"github.com/folioview/folioview/internal/viewstate"
	"github.com/folioview/folioview/pkg/logger"
	"github.com/folioview/folioview/pkg/metrics"
	"github.com/folioview/folioview/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: backend=%s mongo=%v redis=%v assets=%v",
		cfg.Recents.Backend, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Assets.Origin != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple; production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, X-Preview-Source")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// shared runtime vars used by handlers/readiness
	var recentsSvc service.Service
	var viewSvc *viewstate.Service
	var assetSvc *assets.Service
	var blobs preview.BlobStore

	ctx := context.Background()

	// Connect to Redis early so the rate-limiter, resume-token revocation and
	// asset cache can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			redisClient = rc
			viewstate.SetRevocationClient(redisClient)
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-session when a resume token is presented,
	// otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint: return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		// the recents store is the core dependency; everything else degrades
		deps["recents"] = recentsSvc != nil
		if !deps["recents"] {
			ready = false
		}

		// optional subsystems report their state without blocking readiness
		deps["sessions"] = viewSvc != nil
		deps["previews"] = blobs != nil
		deps["shell"] = assetSvc != nil

		// Redis readiness when it backs the rate limiter
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Connect to MongoDB when configured. Retry/backoff to tolerate startup races.
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
			mongoClient = nil
		} else {
			defer func() { _ = mongoClient.Disconnect(ctx) }()
		}
	}

	// Recents store for the configured backend, falling back to memory so the
	// viewer keeps working when its persistence is down
	switch cfg.Recents.Backend {
	case config.BackendMongo:
		if mongoClient != nil {
			col := mongoClient.Database(cfg.MongoDB.Database).Collection("recent_documents")
			recentsSvc = service.NewMongoService(col, cfg.Recents.MaxRecents)
			logger.Infof("using MongoDB for the recents store")
		} else {
			logger.Warnf("mongo recents backend configured but MongoDB is unavailable, using memory store")
			recentsSvc = service.NewMemoryService(cfg.Recents.MaxRecents)
		}
	case config.BackendMemory:
		recentsSvc = service.NewMemoryService(cfg.Recents.MaxRecents)
	default:
		sqliteSvc, err := service.NewSQLiteService(cfg.Recents.SQLitePath, cfg.Recents.MaxRecents)
		if err != nil {
			logger.Warnf("cannot open sqlite store at %s (%v), using memory store", cfg.Recents.SQLitePath, err)
			recentsSvc = service.NewMemoryService(cfg.Recents.MaxRecents)
		} else {
			recentsSvc = sqliteSvc
			logger.Infof("using SQLite for the recents store at %s", cfg.Recents.SQLitePath)
		}
	}
	if err := recentsSvc.Initialize(ctx); err != nil {
		logger.Fatalf("failed to initialize recents store: %v", err)
	}
	defer recentsSvc.Close()

	// View sessions: prefer Redis when connected (fast, TTL-native), fall back
	// to Mongo. Without either the resume feature stays off.
	if redisClient != nil {
		viewSvc = viewstate.NewService(viewstate.NewRedisRepository(redisClient, "view:"))
		logger.Infof("using Redis for view session storage")
	} else if mongoClient != nil {
		col := mongoClient.Database(cfg.MongoDB.Database).Collection("view_sessions")
		viewSvc = viewstate.NewService(viewstate.NewMongoRepository(col))
		logger.Infof("using MongoDB for view session storage")
	}

	// Page previews: MinIO-backed render cache when configured, otherwise
	// every page request renders fresh
	opener := render.NewFitzOpener()
	if mc := storage.LoadMinIOConfig(); mc.Endpoint != "" {
		st, err := storage.NewMinIOStorage(mc)
		if err != nil {
			logger.Warnf("failed to connect to MinIO (%s): %v, page previews render per request", mc.Endpoint, err)
		} else {
			blobs = st
			logger.Infof("using MinIO at %s for the page preview cache", mc.Endpoint)
		}
	}
	previews := preview.New(opener, blobs)

	// Shell assets: cache-first serving with optional startup prefetch
	if cfg.Assets.Origin != "" {
		var cacheBackend assets.CacheBackend
		if redisClient != nil {
			cacheBackend = assets.NewRedisCache(redisClient, "asset:", 0)
		} else {
			cacheBackend = assets.NewMemoryCache()
		}
		assetSvc = assets.NewService(cfg.Assets.Origin, cfg.Assets.Manifest, cacheBackend)
		if cfg.Assets.Prefetch {
			if err := assetSvc.Prefetch(ctx); err != nil {
				logger.Warnf("asset prefetch failed: %v", err)
			}
		}
	}

	// Register handlers
	api := r.Group("/api/v1")
	handlers.NewRecentsHandler(recentsSvc, previews, opener).Register(api)
	if viewSvc != nil {
		handlers.NewSessionsHandler(cfg, viewSvc, recentsSvc).Register(api)
	} else {
		logger.Warnf("session handlers not registered because no session store is available")
	}
	if assetSvc != nil {
		handlers.NewShellHandler(assetSvc).Register(r)
	} else {
		logger.Warnf("shell handlers not registered because ASSETS_ORIGIN is not set")
	}
	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting folioview on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
