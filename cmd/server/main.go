package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/postbase/postbase/internal/auth"
	"github.com/postbase/postbase/internal/authz"
	"github.com/postbase/postbase/internal/config"
	"github.com/postbase/postbase/internal/database"
	"github.com/postbase/postbase/internal/handlers"
	"github.com/postbase/postbase/internal/logger"
	"github.com/postbase/postbase/internal/middleware"
	"github.com/postbase/postbase/internal/services"
	"github.com/postbase/postbase/internal/storage"
)

func main() {
	cfg := config.Default()
	if err := config.Load("POSTBASE_", &cfg); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if cfg.Auth.JWTSecret == "" {
		logger.Error("POSTBASE_AUTH_JWTSECRET is required")
		os.Exit(1)
	}

	// Initialize database
	db, err := database.NewDB(cfg.Database)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize storage (disabled when no endpoint is configured)
	storageClient, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize services
	accounts := auth.NewAuth(db.Pool)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
	userService := services.NewUserService(db.Pool)
	postService := services.NewPostService(db.Pool)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		logger.Error("failed to initialize authz", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accounts, issuer)
	userHandler := handlers.NewUserHandler(userService)
	postHandler := handlers.NewPostHandler(postService)
	attachmentHandler := handlers.NewAttachmentHandler(storageClient, postService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigin))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Use(middleware.AuthRateLimitMiddleware())
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authProtected := authRoutes.Group("")
	authProtected.Use(middleware.AuthMiddleware(issuer, accounts))
	authProtected.POST("/logout", authHandler.Logout)
	authProtected.GET("/me", authHandler.Me)

	// Post routes (reads are public; writes require auth + role check)
	postsAPI := api.Group("/posts")
	postsAPI.GET("", postHandler.ListPosts)
	postsAPI.GET("/:id", postHandler.GetPost)
	postsAPI.GET("/:id/attachments", attachmentHandler.List)
	postsAPI.GET("/:id/attachments/*path", attachmentHandler.Get)

	postsProtected := postsAPI.Group("")
	postsProtected.Use(middleware.AuthMiddleware(issuer, accounts), middleware.AuthzMiddleware(enforcer))
	postsProtected.POST("", postHandler.CreatePost)
	postsProtected.PUT("/:id", postHandler.UpdatePost)
	postsProtected.PATCH("/:id", postHandler.UpdatePost)
	postsProtected.DELETE("/:id", postHandler.DeletePost)
	postsProtected.PUT("/:id/attachments/*path", attachmentHandler.Put)
	postsProtected.DELETE("/:id/attachments/*path", attachmentHandler.Delete)

	// User administration routes (admin only, enforced by authz policy)
	usersAPI := api.Group("/users")
	usersAPI.Use(middleware.AuthMiddleware(issuer, accounts), middleware.AuthzMiddleware(enforcer))
	usersAPI.GET("", userHandler.ListUsers)
	usersAPI.GET("/:id", userHandler.GetUser)
	usersAPI.PUT("/:id", userHandler.UpdateUser)
	usersAPI.PATCH("/:id", userHandler.UpdateUser)
	usersAPI.DELETE("/:id", userHandler.DeleteUser)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("postbase API server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}
