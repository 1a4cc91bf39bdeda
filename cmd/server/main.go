// @title           Site CRM Backend API
// @version         1.0.0
// @description     Backend API for the website agency CRM: project pipeline, Kanban board, customization requests, public personalization forms and status notifications.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"site-crm-backend/docs"
	"site-crm-backend/internal/board"
	"site-crm-backend/internal/brief"
	"site-crm-backend/internal/config"
	"site-crm-backend/internal/customizations"
	"site-crm-backend/internal/database"
	"site-crm-backend/internal/handlers"
	"site-crm-backend/internal/localstate"
	"site-crm-backend/internal/middleware"
	"site-crm-backend/internal/notifications"
	"site-crm-backend/internal/personalization"
	"site-crm-backend/internal/projects"
	"site-crm-backend/internal/scheduler"
	"site-crm-backend/internal/services"
	"site-crm-backend/internal/socket"
	"site-crm-backend/internal/supabase"
	"site-crm-backend/internal/templates"
	"site-crm-backend/internal/upload"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Point Swagger at the deployed host
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}
	storageClient := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)

	var dbClient *supabase.DatabaseClient
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set. Project data will not be available.")
		log.Println("Please set DATABASE_URL environment variable with your Supabase PostgreSQL connection string")
	} else {
		dbClient, err = supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize database client: %v", err)
			log.Println("Database operations will be unavailable. Please configure DATABASE_URL properly.")
		} else {
			defer dbClient.Close()
			if err := database.NewMigrator(dbClient.DB()).Run(ctx); err != nil {
				log.Printf("Warning: Migration failed: %v", err)
			} else {
				log.Println("Migrations completed successfully")
			}
		}
	}

	// Local state for notifications. Redis keeps it across restarts and
	// instances; the in-memory store only lives as long as the process.
	var state localstate.Store = localstate.NewMemoryStore()
	if cfg.RedisURL != "" {
		redisStore, err := localstate.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, notifications will not survive a restart: %v", err)
		} else {
			defer redisStore.Close()
			state = redisStore
		}
	}

	hub := socket.NewHub()
	go hub.Run(ctx)

	uploader := upload.NewUploader(storageClient, upload.Options{
		MaxBytes:   cfg.UploadMaxBytes,
		MaxRetries: cfg.UploadMaxRetries,
		Timeout:    cfg.UploadTimeout,
	})

	// Services see a nil gateway, never a nil *DatabaseClient, when the
	// database is down.
	projectService := projects.NewService(nil)
	registry := templates.NewRegistry(nil)
	var (
		statusWriter board.StatusWriter
		tracker      *customizations.Tracker
		submitter    *personalization.Submitter
		mediaService *services.MediaService
		generator    *brief.Generator
	)
	if dbClient != nil {
		projectService = projects.NewService(dbClient)
		registry = templates.NewRegistry(dbClient)
		statusWriter = dbClient
		tracker = customizations.NewTracker(dbClient, dbClient)
		submitter = personalization.NewSubmitter(dbClient, uploader)
		mediaService = services.NewMediaService(dbClient, storageClient, cfg.SignedURLTTL)
		generator = brief.NewGenerator(dbClient, dbClient)
	}

	kanban := board.New(projects.NewLister(projectService), statusWriter)
	if err := kanban.Reload(ctx); err != nil {
		log.Printf("Warning: Failed to load board: %v", err)
	}

	engine := notifications.NewEngine(state, hub, cfg.NotificationDedupWindow)
	if err := engine.Load(ctx); err != nil {
		log.Printf("Warning: Failed to load notifications: %v", err)
	}

	if dbClient != nil {
		realtimeClient := supabase.NewRealtimeClient(cfg.DatabaseURL)
		realtimeClient.Subscribe("board", "projects", kanban.HandleChange)
		realtimeClient.Subscribe("notifications", "projects", engine.HandleChange)
		if err := realtimeClient.Start(ctx); err != nil {
			log.Printf("Warning: Realtime disabled: %v", err)
		}
	}

	resync := scheduler.NewScheduler(kanban, cfg.BoardResyncSchedule)
	if err := resync.Start(); err != nil {
		log.Printf("Warning: Board resync disabled: %v", err)
	} else {
		defer resync.Stop()
	}

	authHandler := handlers.NewAuthHandler(supabaseClient)
	projectsHandler := handlers.NewProjectsHandler(projectService, kanban)
	boardHandler := handlers.NewBoardHandler(kanban)
	customizationsHandler := handlers.NewCustomizationsHandler(tracker)
	templatesHandler := handlers.NewTemplatesHandler(registry, cfg.FrontendURL)
	personalizationHandler := handlers.NewPersonalizationHandler(registry, submitter)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	briefHandler := handlers.NewBriefHandler(generator)
	notificationsHandler := handlers.NewNotificationsHandler(engine)
	wsHandler := socket.NewHandler(hub, func(token string) (string, error) {
		return middleware.ParseToken(cfg.SupabaseJWTSecret, token)
	}, cfg.CORSAllowedOrigins)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.OriginalPathHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// Public routes
	public := router.Group("/api/v1")
	public.POST("/auth/login", authHandler.Login)
	public.GET("/formulario/:modelo", personalizationHandler.GetForm)
	public.POST("/formulario/:modelo", personalizationHandler.Submit)
	public.GET("/confirmacao", handlers.Confirmation)
	public.GET("/ws", wsHandler.Serve)

	// Dashboard routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.GET("/auth/session", authHandler.Session)
	api.GET("/statuses", handlers.ListStatuses)

	// Projects
	api.GET("/projects", projectsHandler.ListProjects)
	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects/:id", projectsHandler.GetProject)
	api.PUT("/projects/:id", projectsHandler.UpdateProject)
	api.DELETE("/projects/:id", projectsHandler.DeleteProject)
	api.PATCH("/projects/:id/status", projectsHandler.UpdateStatus)
	api.GET("/projects/:id/site-command", briefHandler.GetSiteCommand)
	api.GET("/stats/projects", projectsHandler.GetStats)

	// Board
	api.GET("/board", boardHandler.GetBoard)
	api.POST("/board/move", boardHandler.Move)

	// Customizations
	api.GET("/projects/:id/customizations", customizationsHandler.ListCustomizations)
	api.POST("/projects/:id/customizations", customizationsHandler.RequestCustomization)
	api.PATCH("/customizations/:id", customizationsHandler.UpdateCustomizationStatus)
	api.DELETE("/customizations/:id", customizationsHandler.DeleteCustomization)

	// Templates
	api.GET("/templates", templatesHandler.ListTemplates)
	api.POST("/templates", templatesHandler.CreateTemplate)
	api.POST("/templates/validate-url", templatesHandler.CheckCustomURL)
	api.GET("/templates/:id", templatesHandler.GetTemplate)
	api.PUT("/templates/:id", templatesHandler.UpdateTemplate)
	api.DELETE("/templates/:id", templatesHandler.DeleteTemplate)
	api.GET("/templates/:id/share-url", templatesHandler.GetShareURL)

	// Personalization files
	api.GET("/personalizations/:id/media", mediaHandler.GetMedia)
	api.GET("/media/probe", mediaHandler.ProbeMedia)

	// Notifications
	api.GET("/notifications", notificationsHandler.ListNotifications)
	api.DELETE("/notifications", notificationsHandler.ClearAll)
	api.POST("/notifications/:id/read", notificationsHandler.MarkAsRead)
	api.DELETE("/notifications/:id", notificationsHandler.Dismiss)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
