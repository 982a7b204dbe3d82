package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
	"github.com/tadeyemo32/vanguard-staffing/internal/config"
	"github.com/tadeyemo32/vanguard-staffing/internal/logging"
	"github.com/tadeyemo32/vanguard-staffing/services"
)

// Handler carries what the HTTP handlers need.
type Handler struct {
	planner   *services.Planner
	store     *services.Store
	templates []funnel.Template
	auth      *services.TokenAuth
	log       *slog.Logger
}

func NewHandler(planner *services.Planner, templates []funnel.Template, auth *services.TokenAuth) *Handler {
	return &Handler{
		planner:   planner,
		store:     planner.Store(),
		templates: templates,
		auth:      auth,
		log:       logging.New("api"),
	}
}

func SetupRoutes(r *gin.Engine, h *Handler, cfg config.Config) {
	r.Use(RequestIDMiddleware())

	apiGroup := r.Group("/api")
	apiGroup.Use(BackendKeyMiddleware(cfg.APIKey, cfg.APIKeyHash))
	{
		apiGroup.GET("/health", healthCheck)

		apiGroup.POST("/funnel/calculate", h.calculateHandler)
		apiGroup.POST("/health/classify", h.classifyHandler)

		apiGroup.GET("/templates", h.listTemplatesHandler)
		apiGroup.GET("/pipelines", h.listPipelinesHandler)
		apiGroup.GET("/pipelines/:id", h.getPipelineHandler)
		apiGroup.GET("/pipelines/:id/performance", h.pipelinePerformanceHandler)

		apiGroup.GET("/plans/:id", h.getPlanHandler)
		apiGroup.GET("/plans/:id/roles/:roleID/reconcile", h.reconcileHandler)
		apiGroup.GET("/plans/:id/roles/:roleID/history", h.historyHandler)

		apiGroup.GET("/candidates/count", h.candidateCountHandler)
		apiGroup.GET("/candidates/quality", h.dataQualityHandler)

		authGroup := apiGroup.Group("")
		authGroup.Use(AuthMiddleware(h.auth, cfg.AppEnv, cfg.DevBypassToken))
		{
			authGroup.POST("/pipelines", h.createPipelineHandler)
			authGroup.POST("/pipelines/from-template", h.fromTemplateHandler)
			authGroup.POST("/plans", h.createPlanHandler)
			authGroup.POST("/plans/:id/roles", h.addRoleHandler)
			authGroup.POST("/plans/:id/roles/:roleID/generate", h.generateHandler)
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
