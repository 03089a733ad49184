package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/shafin-dev/localhub/backend/internal/router"
	"github.com/shafin-dev/localhub/backend/pkg/config"
	"github.com/shafin-dev/localhub/backend/pkg/firebase"
	"github.com/shafin-dev/localhub/backend/pkg/logger"
	"github.com/shafin-dev/localhub/backend/validators"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		zapLogger.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	// Initialize Firebase. Optional: without credentials the
	// firebase-login route is disabled and local JWT auth still works.
	ctx := context.Background()
	var firebaseApp *firebase.App
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			zapLogger.Fatal("failed to initialize Firebase", zap.Error(err))
		}
	} else {
		zapLogger.Warn("FIREBASE_CREDENTIALS_PATH not set, Firebase login disabled")
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	var firebaseAuth *auth.Client
	if firebaseApp != nil {
		firebaseAuth = firebaseApp.AuthClient
	}
	if err := router.SetupRoutes(e, cfg, db, firebaseAuth, zapLogger); err != nil {
		zapLogger.Fatal("failed to set up routes", zap.Error(err))
	}

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
