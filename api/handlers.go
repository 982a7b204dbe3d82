package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
	"github.com/tadeyemo32/vanguard-staffing/health"
	"github.com/tadeyemo32/vanguard-staffing/matcher"
	"github.com/tadeyemo32/vanguard-staffing/models"
	"github.com/tadeyemo32/vanguard-staffing/services"
)

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case services.IsNotFound(err), errors.Is(err, matcher.ErrClientNotResolved):
		return http.StatusNotFound
	case errors.Is(err, funnel.ErrNoPlannableStages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, funnel.ErrInvalidTarget),
		errors.Is(err, funnel.ErrInvalidPipeline),
		errors.Is(err, matcher.ErrUnknownStage),
		errors.Is(err, matcher.ErrInvalidTable):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, matcher.ErrDataSourceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.FullPath(), "request_id", c.GetString("requestID"), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// ─── Stateless ────────────────────────────────────────────────────────────────

func (h *Handler) calculateHandler(c *gin.Context) {
	var req models.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if req.TargetDate.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_date is required"})
		return
	}

	stages := req.Stages
	if len(stages) == 0 {
		if req.PipelineID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stages or pipeline_id is required"})
			return
		}
		var err error
		if stages, err = h.store.PipelineStages(c.Request.Context(), req.PipelineID); err != nil {
			h.fail(c, err)
			return
		}
	} else if err := funnel.Validate(stages); err != nil {
		h.fail(c, err)
		return
	}

	reqs, err := funnel.Calculate(stages, req.TargetHires, req.TargetDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requirements": reqs})
}

func (h *Handler) classifyHandler(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if req.Actual < 0 || req.Required < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actual and required must not be negative"})
		return
	}
	if req.NeededBy.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "needed_by is required"})
		return
	}
	today := req.Today
	if today.IsZero() {
		today = h.planner.Today()
	}
	c.JSON(http.StatusOK, health.Classify(req.Actual, req.Required, req.NeededBy, today))
}

// ─── Pipelines ────────────────────────────────────────────────────────────────

func (h *Handler) listTemplatesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.templates)
}

func (h *Handler) listPipelinesHandler(c *gin.Context) {
	pipelines, err := h.store.ListPipelines(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pipelines)
}

func (h *Handler) getPipelineHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.store.GetPipeline(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) pipelinePerformanceHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.store.GetPipeline(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	stages := make([]funnel.PipelineStage, len(p.Stages))
	for i, st := range p.Stages {
		stages[i] = st.Funnel()
	}

	metrics, err := funnel.Performance(stages)
	if err != nil {
		h.fail(c, err)
		return
	}
	industry := c.DefaultQuery("industry", p.Industry)
	c.JSON(http.StatusOK, gin.H{
		"metrics":         metrics,
		"benchmark":       funnel.BenchmarkFor(industry),
		"recommendations": funnel.Recommend(metrics, industry),
	})
}

func (h *Handler) createPipelineHandler(c *gin.Context) {
	var req models.CreatePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	p, err := h.store.CreatePipeline(c.Request.Context(), req.Name, req.Description, req.Industry, req.Stages)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) fromTemplateHandler(c *gin.Context) {
	var req models.FromTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	t, ok := funnel.FindTemplate(h.templates, req.Template)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found: " + req.Template})
		return
	}
	name := req.Name
	if name == "" {
		name = t.Name
	}
	p, err := h.store.CreatePipeline(c.Request.Context(), name, t.Description, t.Industry, t.Stages)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ─── Plans ────────────────────────────────────────────────────────────────────

func (h *Handler) createPlanHandler(c *gin.Context) {
	var req models.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	// the token decides the owner; only the dev bypass may name one
	owner := c.GetString("owner")
	if _, bypass := c.Get("devBypass"); bypass && req.Owner != "" {
		owner = req.Owner
	}

	plan, err := h.store.CreatePlan(c.Request.Context(), req.PlanName, req.Client, owner)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *Handler) getPlanHandler(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.store.GetPlan(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) addRoleHandler(c *gin.Context) {
	planID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.AddRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if req.TargetDate.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_date is required"})
		return
	}
	role, err := h.store.AddRole(c.Request.Context(), planID, req.Role, req.PipelineID, req.TargetHires, req.TargetDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

func (h *Handler) generateHandler(c *gin.Context) {
	planID, ok := idParam(c, "id")
	if !ok {
		return
	}
	roleID, ok := idParam(c, "roleID")
	if !ok {
		return
	}
	reqs, err := h.planner.GenerateRequirements(c.Request.Context(), planID, roleID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requirements": reqs})
}

func (h *Handler) reconcileHandler(c *gin.Context) {
	planID, ok := idParam(c, "id")
	if !ok {
		return
	}
	roleID, ok := idParam(c, "roleID")
	if !ok {
		return
	}

	var today funnel.Date
	if v := c.Query("today"); v != "" {
		d, err := funnel.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		today = d
	}
	cumulative, ok := boolQuery(c, "cumulative", h.planner.DefaultCumulative())
	if !ok {
		return
	}

	view, err := h.planner.Reconcile(c.Request.Context(), planID, roleID, today, cumulative)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) historyHandler(c *gin.Context) {
	planID, ok := idParam(c, "id")
	if !ok {
		return
	}
	roleID, ok := idParam(c, "roleID")
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}
	if _, err := h.store.GetRole(c.Request.Context(), planID, roleID); err != nil {
		h.fail(c, err)
		return
	}
	snaps, err := h.store.ListSnapshots(c.Request.Context(), planID, roleID, c.Query("kind"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snaps)
}

// ─── Candidates ──────────────────────────────────────────────────────────────

func (h *Handler) candidateCountHandler(c *gin.Context) {
	countType, err := matcher.ParseCountType(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cumulative, ok := boolQuery(c, "cumulative", h.planner.DefaultCumulative())
	if !ok {
		return
	}

	req := matcher.Request{
		Client:     c.Query("client"),
		PlanName:   c.Query("plan"),
		Role:       c.Query("role"),
		Cumulative: cumulative,
		Type:       countType,
	}
	if req.Client == "" || req.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client and role are required"})
		return
	}
	if stage := c.Query("stage"); stage != "" {
		req.Stage = &stage
	}

	stages, ok := h.optionalPipelineStages(c)
	if !ok {
		return
	}
	res, err := h.planner.CountCandidates(c.Request.Context(), req, stages)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) dataQualityHandler(c *gin.Context) {
	stages, ok := h.optionalPipelineStages(c)
	if !ok {
		return
	}
	var table *matcher.Table
	if len(stages) > 0 {
		t, err := matcher.TableFromStages(stages)
		if err != nil {
			h.fail(c, err)
			return
		}
		table = t
	}
	rep, err := matcher.DataQuality(c.Request.Context(), h.store, table)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// optionalPipelineStages loads ?pipeline_id= when present.
func (h *Handler) optionalPipelineStages(c *gin.Context) ([]funnel.PipelineStage, bool) {
	v := c.Query("pipeline_id")
	if v == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pipeline_id"})
		return nil, false
	}
	stages, err := h.store.PipelineStages(c.Request.Context(), uint(id))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return stages, true
}

func boolQuery(c *gin.Context, name string, def bool) (bool, bool) {
	v := c.Query(name)
	if v == "" {
		return def, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return false, false
	}
	return b, true
}
