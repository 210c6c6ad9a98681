package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"class-diagram/internal/common/config"
	"class-diagram/internal/common/middleware"
	"class-diagram/internal/editor"
	"class-diagram/internal/editor/handlers"
	"class-diagram/internal/editor/repository"
	"class-diagram/internal/editor/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Diagram Editor Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		log.Fatalf("init db: %v", err)
	}

	opts := editorOptions(cfg.Editor)
	factory := func() (*editor.Editor, error) {
		page := editor.DefaultPage(opts, cfg.Editor.CanvasWidth, cfg.Editor.CanvasHeight)
		return editor.New(page, opts)
	}

	// Проверяем привязку к странице до старта сервера.
	if _, err := factory(); err != nil {
		log.Fatalf("editor init: %v", err)
	}

	sessions := service.NewSessionManager(factory, repo)
	if cfg.SessionIdle > 0 {
		idle := time.Duration(cfg.SessionIdle) * time.Minute
		go sessions.RunEviction(context.Background(), time.Minute, idle)
	}
	editorHandler := handlers.NewEditorHandler(sessions)
	healthHandler := handlers.NewHealthHandler(db)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Diagram Editor",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	if cfg.Environment == "development" {
		app.Use(middleware.CORS())
	} else if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		app.Use(middleware.CORS(strings.Split(origins, ",")...))
	}

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", healthHandler.LivenessProbe)
	app.Get("/health/ready", healthHandler.ReadinessProbe)

	// ============================================================
	// Editor Routes
	// ============================================================

	app.Get("/", handlers.HostPage(cfg.Editor))
	handlers.RegisterEditorRoutes(app, editorHandler)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Diagram Editor on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Canvas %dx%d, export scale %v", cfg.Editor.CanvasWidth, cfg.Editor.CanvasHeight, cfg.Editor.ExportScale)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func editorOptions(e config.EditorConfig) editor.Options {
	return editor.Options{
		CanvasID:    e.CanvasID,
		PanelID:     e.PanelID,
		GridSpacing: e.GridSpacing,
		GridColor:   e.GridColor,
		ExportScale: e.ExportScale,
		Background:  e.Background,
	}
}
