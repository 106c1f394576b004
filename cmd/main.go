package main

import (
	"timetrack-service/internal/handler"
	mid "timetrack-service/internal/middleware"
	"timetrack-service/internal/seed"
	"timetrack-service/pkg/config"
	"timetrack-service/pkg/database"
	"timetrack-service/pkg/jwtutil"
	"timetrack-service/pkg/logger"
	"timetrack-service/pkg/tcsactor"
	"timetrack-service/prometheus"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load .env file; missing files are fine, environment variables win
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting timetrack-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Seed bootstrap data
	if err := seed.Run(database.GetDB(), log); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	// Wire the TCS form-filling actor client
	actor := tcsactor.NewClient(appConfig.TCS.ActorURL, appConfig.TCS.Timeout)
	handler.InitTCS(&appConfig.TCS, actor)
	if appConfig.TCS.ActorURL == "" {
		log.Warn("TCS actor URL not configured, auto-fill will be unavailable")
	}

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: appConfig.Server.CORSOrigins,
	}))
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// API routes; JWT auth is optional and off by default for local use
	api := e.Group("/api")
	if appConfig.Auth.Enabled {
		api.Use(mid.AuthMiddleware)
		log.Info("JWT auth enabled on /api routes")
	}

	projectAPI := api.Group("/projects")
	projectAPI.GET("", handler.ListProjects)
	projectAPI.GET("/:id", handler.GetProject)
	projectAPI.POST("", handler.CreateProject)
	projectAPI.PATCH("/:id", handler.UpdateProject)
	projectAPI.DELETE("/:id", handler.DeleteProject)
	projectAPI.GET("/:id/milestones", handler.ListMilestones)
	projectAPI.POST("/:id/milestones", handler.CreateMilestone)

	milestoneAPI := api.Group("/milestones")
	milestoneAPI.GET("/:id", handler.GetMilestone)
	milestoneAPI.PATCH("/:id", handler.UpdateMilestone)
	milestoneAPI.DELETE("/:id", handler.DeleteMilestone)

	groupAPI := api.Group("/account-groups")
	groupAPI.GET("", handler.ListAccountGroups)
	groupAPI.GET("/:id", handler.GetAccountGroup)
	groupAPI.POST("", handler.CreateAccountGroup)
	groupAPI.PATCH("/:id", handler.UpdateAccountGroup)
	groupAPI.DELETE("/:id", handler.DeleteAccountGroup)

	categoryAPI := api.Group("/work-categories")
	categoryAPI.GET("", handler.ListWorkCategories)
	categoryAPI.GET("/:id", handler.GetWorkCategory)
	categoryAPI.POST("", handler.CreateWorkCategory)
	categoryAPI.PATCH("/:id", handler.UpdateWorkCategory)
	categoryAPI.DELETE("/:id", handler.DeleteWorkCategory)

	entryAPI := api.Group("/time-entries")
	entryAPI.GET("", handler.ListTimeEntries)
	entryAPI.GET("/:id", handler.GetTimeEntry)
	entryAPI.POST("", handler.CreateTimeEntry)
	entryAPI.PATCH("/:id", handler.UpdateTimeEntry)
	entryAPI.DELETE("/:id", handler.DeleteTimeEntry)

	statsAPI := api.Group("/stats")
	statsAPI.GET("/projects", handler.GetAllProjectStats)
	statsAPI.GET("/projects/:id", handler.GetProjectStats)

	tcsAPI := api.Group("/tcs")
	tcsAPI.GET("/format", handler.FormatTCS)
	tcsAPI.GET("/format/range", handler.FormatTCSRange)
	tcsAPI.POST("/auto-fill", handler.AutoFillTCS)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
