package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tadeyemo32/vanguard-staffing/api"
	"github.com/tadeyemo32/vanguard-staffing/funnel"
	"github.com/tadeyemo32/vanguard-staffing/internal/config"
	"github.com/tadeyemo32/vanguard-staffing/internal/logging"
	"github.com/tadeyemo32/vanguard-staffing/services"
)

func main() {
	cfg, err := config.Load(".env", "../.env")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	db, err := services.OpenDB(cfg.DatabasePath, strings.EqualFold(cfg.LogLevel, "debug"))
	if err != nil {
		log.Fatalf("Error opening database %s: %v", cfg.DatabasePath, err)
	}
	store := services.NewStore(db, cfg.ClientCacheTTL)

	templates, err := funnel.LoadTemplates(cfg.PipelineTemplates)
	if err != nil {
		log.Fatalf("Error loading pipeline templates: %v", err)
	}
	created, err := store.SeedTemplates(context.Background(), templates)
	if err != nil {
		log.Fatalf("Error seeding pipelines: %v", err)
	}
	if created > 0 {
		log.Printf("Seeded %d pipelines from templates", created)
	}

	planner := services.NewPlanner(store, store, services.PlannerConfig{
		MatchTimeout: cfg.MatchTimeout,
		Parallel:     cfg.ReconcileParallel,
		Cumulative:   cfg.CumulativeActuals,
	})
	handler := api.NewHandler(planner, templates, services.NewTokenAuth(cfg.JWTSecret))

	r := gin.Default()
	r.Use(api.CORSMiddleware())
	api.SetupRoutes(r, handler, cfg)

	log.Printf("Starting staffing planner on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Error starting Go server: %v", err)
	}
}

