package core

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nephophile/umt/src/umd/api"
	"github.com/nephophile/umt/src/umd/auth"
	"github.com/nephophile/umt/src/umd/backup"
	"github.com/nephophile/umt/src/umd/db"
	"github.com/nephophile/umt/src/umd/storage"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// Server holds the HTTP server instance and configuration
type Server struct {
	router        *gin.Engine
	httpServer    *http.Server
	database      *db.Database
	backupManager *backup.Manager
	api           *api.API

	stopBackups chan struct{}
}

// NewServer creates a new Server instance
func NewServer(database *db.Database, backupManager *backup.Manager) *Server {
	// Set Gin mode based on log level
	if viper.GetString("log.level") == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// gin trusts every proxy by default, which lets clients spoof their IP
	// through X-Forwarded-For. Forwarded headers are honored only when the
	// deployment explicitly sits behind a trusted proxy.
	if !viper.GetBool("security.rate_limit.trust_proxy") {
		_ = router.SetTrustedProxies(nil)
	}

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(corsMiddleware())

	// Add logging middleware
	router.Use(ginLogger())

	// Initialize auth components
	repo := auth.NewRepository(database.DB())
	jwtCfg := auth.DefaultJWTConfig()
	jwtCfg.Secret = viper.GetString("auth.jwt_secret")
	if hours := viper.GetInt("auth.token_duration_hours"); hours > 0 {
		jwtCfg.TokenDuration = time.Duration(hours) * time.Hour
	}
	jwtService := auth.NewJWTService(jwtCfg, database)

	// Create API instance with all dependencies
	api.SetLogger(log)
	api.SetVersionInfo(VersionInfo)
	apiInstance := api.New(api.Config{
		Repo:          repo,
		JWTService:    jwtService,
		Database:      database,
		BackupManager: backupManager,
		RateLimit: api.RateLimitConfig{
			Enabled:            viper.GetBool("security.rate_limit.enabled"),
			AuthRequestsPerMin: viper.GetInt("security.rate_limit.auth_per_min"),
			APIRequestsPerMin:  viper.GetInt("security.rate_limit.api_per_min"),
		},
	})

	// Register all routes
	apiInstance.RegisterRoutes(router)

	s := &Server{
		router:        router,
		database:      database,
		backupManager: backupManager,
		api:           apiInstance,
		stopBackups:   make(chan struct{}),
	}

	// Start periodic backups when an interval is configured
	if backupManager != nil {
		if interval := viper.GetInt("backup.interval_minutes"); interval > 0 {
			go s.runPeriodicBackups(time.Duration(interval) * time.Minute)
		}
	}

	return s
}

// runPeriodicBackups takes a backup every interval until shutdown
func (s *Server) runPeriodicBackups(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := s.backupManager.Run(ctx); err != nil {
				log.Error("Periodic backup failed", "error", err)
			}
			cancel()
		case <-s.stopBackups:
			return
		}
	}
}

// Run starts the HTTP server and blocks until a shutdown signal arrives
func (s *Server) Run() error {
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	addr := fmt.Sprintf("%s:%d", bind, port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors coming from the listener
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting umd server", "address", addr)

		if s.backupManager != nil {
			log.Info("Backups enabled")
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Received signal, shutting down", "signal", sig)
	}

	return s.Shutdown()
}

// Shutdown performs a graceful shutdown of the server and its resources
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	close(s.stopBackups)

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error("HTTP server shutdown error", "error", err)
		}
	}

	if s.api != nil {
		s.api.Stop()
	}

	// A final backup captures the state the server shuts down with
	if s.backupManager != nil {
		log.Info("Taking shutdown backup")
		if _, err := s.backupManager.Run(ctx); err != nil {
			log.Error("Shutdown backup failed", "error", err)
		}
	}

	log.Info("Server stopped gracefully")
	return nil
}

// corsMiddleware returns a gin middleware for handling CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Allow all origins for now (can be restricted via config later)
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Subject-Token")
		}

		// Handle preflight requests
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// ginLogger returns a gin middleware for logging requests
func ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Log request details
		latency := time.Since(start)
		status := c.Writer.Status()
		method := c.Request.Method

		if query != "" {
			path = path + "?" + query
		}

		log.Debug("HTTP request",
			"status", status,
			"method", method,
			"path", path,
			"latency", latency,
			"client_ip", c.ClientIP(),
		)
	}
}

// newBackupManager builds the backup manager from configuration.
// Returns nil when backups are disabled.
func newBackupManager(database *db.Database) (*backup.Manager, error) {
	if !viper.GetBool("backup.enabled") {
		return nil, nil
	}

	storageType := viper.GetString("backup.storage.type")

	// If an S3 endpoint is specified, use S3 regardless of storage type
	s3Endpoint := viper.GetString("backup.storage.s3.endpoint")
	if s3Endpoint != "" {
		storageType = "s3"
	}

	log.Info("Initializing backup storage", "type", storageType)

	backend, err := storage.New(storage.Config{
		Type: storageType,
		Local: storage.LocalConfig{
			BasePath: viper.GetString("backup.storage.local.path"),
		},
		S3: storage.S3Config{
			Endpoint:        s3Endpoint,
			Region:          viper.GetString("backup.storage.s3.region"),
			Bucket:          viper.GetString("backup.storage.s3.bucket"),
			AccessKeyID:     viper.GetString("backup.storage.s3.access_key"),
			SecretAccessKey: viper.GetString("backup.storage.s3.secret_key"),
			UsePathStyle:    viper.GetBool("backup.storage.s3.path_style"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backup storage: %w", err)
	}

	// For S3 backends, ensure the bucket exists up front
	if s3Backend, ok := backend.(*storage.S3Backend); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s3Backend.EnsureBucket(ctx); err != nil {
			log.Warn("S3 bucket not accessible - backups may fail", "bucket", s3Backend.Bucket(), "error", err)
		} else {
			log.Debug("S3 bucket verified", "bucket", s3Backend.Bucket())
		}
	}

	backup.SetLogger(log)
	return backup.NewManager(database, backend, backup.Config{
		Prefix:    viper.GetString("backup.prefix"),
		Retention: viper.GetInt("backup.retention"),
	}), nil
}

// runServer is called by the root command to start the server
func runServer() error {
	log.Info("umd starting",
		"version", VersionInfo.Version,
		"build_date", VersionInfo.BuildDate,
		"log_output", log.Output(),
	)

	// Initialize database
	dbPath := viper.GetString("database.path")
	log.Info("Initializing database", "path", dbPath)

	database, err := db.New(db.Config{
		Path: dbPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	backupManager, err := newBackupManager(database)
	if err != nil {
		database.Close()
		return err
	}

	server := NewServer(database, backupManager)

	// Run server (blocks until shutdown signal)
	err = server.Run()

	if dbErr := database.Close(); dbErr != nil {
		log.Error("Failed to close database", "error", dbErr)
		if err == nil {
			err = dbErr
		}
	}

	return err
}
