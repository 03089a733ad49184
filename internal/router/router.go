package router

import (
	"context"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/shafin-dev/localhub/backend/internal/cache"
	"github.com/shafin-dev/localhub/backend/internal/handlers"
	"github.com/shafin-dev/localhub/backend/internal/middleware"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"github.com/shafin-dev/localhub/backend/internal/repositories"
	"github.com/shafin-dev/localhub/backend/internal/services"
	"github.com/shafin-dev/localhub/backend/pkg/config"
	"go.uber.org/zap"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuthClient *auth.Client, logger *zap.Logger) error {
	// AutoMigrate PostgreSQL models
	if err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Notification{},
	); err != nil {
		return err
	}
	logger.Info("PostgreSQL auto-migrations completed")

	mongoDB := db.Mongo.Database(cfg.MongoDBName)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := repositories.EnsureMongoIndexes(ctx, mongoDB); err != nil {
		return err
	}
	logger.Info("MongoDB indexes ensured", zap.String("database", cfg.MongoDBName))

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "LocalHub API"})
	})

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(mongoDB, logger)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB, logger)
	reactionRepo := repositories.NewMongoReactionRepository(mongoDB)
	listingRepo := repositories.NewPostgresListingRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)

	// --- Comment engine ---
	var treeCache cache.TreeCache
	if db.Redis != nil {
		treeCache = cache.NewRedisTreeCache(db.Redis, logger)
		logger.Info("comment tree cache backed by Redis")
	} else {
		treeCache = cache.NewMemoryTreeCache()
		logger.Info("comment tree cache running in-process")
	}

	treeBuilder := services.NewTreeBuilder(commentRepo, postRepo, userRepo, reactionRepo, logger, cfg.CommentMaxDepth)
	commentService := services.NewCommentService(commentRepo, postRepo, notificationRepo, treeBuilder, treeCache, logger, cfg.CommentCacheTTL)
	reactionEngine := services.NewReactionEngine(reactionRepo, postRepo, commentRepo, notificationRepo, treeCache, logger)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Read routes (auth optional, viewer flags when signed in) ---
	public := e.Group("/api/v1")
	public.Use(middleware.OptionalJWTAuthMiddleware())

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, userRepo, reactionRepo)
	postHandler.RegisterPostRoutes(api)

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentService)
	commentHandler.RegisterCommentRoutes(public, api)

	// Reaction routes
	reactionHandler := handlers.NewReactionHandler(reactionEngine)
	reactionHandler.RegisterReactionRoutes(api)

	// Listing routes
	listingHandler := handlers.NewListingHandler(listingRepo)
	listingHandler.RegisterListingRoutes(api)

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	logger.Info("all routes configured")
	return nil
}
