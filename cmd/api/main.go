package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tutorhub/internal/cloudinary"
	"tutorhub/internal/compliance"
	"tutorhub/internal/config"
	"tutorhub/internal/httpapi"
	"tutorhub/internal/httpmiddleware"
	"tutorhub/internal/logging"
	"tutorhub/internal/mail"
	"tutorhub/internal/meeting"
	"tutorhub/internal/member"
	"tutorhub/internal/notification"
	"tutorhub/internal/queue"
	"tutorhub/internal/store"
	"tutorhub/internal/volunteer"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env)
	defer logger.Sync()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	ctx := context.Background()

	db, err := store.NewMongo(cfg.MongoURI, cfg.MongoName)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if err := db.EnsureIndexes(ctx); err != nil {
		logger.Warn("ensuring indexes failed", zap.Error(err))
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "tutorhub:events")
	}

	var mailer mail.Mailer
	if cfg.SendgridKey != "" {
		mailer = mail.NewSendgrid(cfg.SendgridKey, cfg.MailFromName, cfg.MailFrom, cfg.AppName)
		logger.Info("sendgrid configured")
	} else {
		mailer = mail.NewConsole(logger)
		logger.Info("no SENDGRID_API_KEY set, mail goes to the log")
	}

	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		logger.Info("cloudinary configured", zap.String("cloud", cfg.CloudinaryCloudName))
	} else {
		logger.Info("cloudinary not configured")
	}

	volunteerRepo := volunteer.NewRepository(db.Collection(store.ColVolunteers))
	memberRepo := member.NewRepository(db.Collection(store.ColMemberships))
	notifRepo := notification.NewRepository(db.Collection(store.ColNotifs))
	meetingRepo := meeting.NewRepository(db.Collection(store.ColMeetings))
	reportRepo := compliance.NewReportRepository(db.Collection(store.ColReports))

	volunteerSvc := volunteer.NewService(volunteerRepo, notifRepo, q, logger)
	memberSvc := member.NewService(memberRepo, volunteerRepo, mailer, logger)

	loc := cfg.Location()
	evaluator := compliance.NewEvaluator(volunteerRepo, memberRepo, notifRepo, reportRepo, loc, logger)
	complianceSvc := compliance.NewService(evaluator, reportRepo, loc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	handler := httpapi.New(cfg, volunteerRepo, volunteerSvc, memberRepo, memberSvc,
		meetingRepo, notifRepo, complianceSvc, cdnClient, logger)
	handler.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
