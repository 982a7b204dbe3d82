package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
	"github.com/tadeyemo32/vanguard-staffing/internal/logging"
	"github.com/tadeyemo32/vanguard-staffing/models"
)

var (
	ErrPlanNotFound     = errors.New("staffing plan not found")
	ErrRoleNotFound     = errors.New("plan role not found")
	ErrPipelineNotFound = errors.New("pipeline not found")
	ErrDuplicate        = errors.New("already exists")
)

// Store is the gorm-backed pipeline config source, plan store and
// candidate data source.
type Store struct {
	db      *gorm.DB
	clients *clientCache
	log     *slog.Logger
}

func NewStore(db *gorm.DB, clientCacheTTL time.Duration) *Store {
	return &Store{db: db, clients: newClientCache(clientCacheTTL), log: logging.New("store")}
}

func (s *Store) DB() *gorm.DB { return s.db }

// ─── Pipelines ────────────────────────────────────────────────────────────────

func (s *Store) ListPipelines(ctx context.Context) ([]models.Pipeline, error) {
	var pipelines []models.Pipeline
	err := s.db.WithContext(ctx).
		Preload("Stages", orderStages).
		Order("name ASC").
		Find(&pipelines).Error
	return pipelines, err
}

func (s *Store) GetPipeline(ctx context.Context, id uint) (*models.Pipeline, error) {
	var p models.Pipeline
	err := s.db.WithContext(ctx).Preload("Stages", orderStages).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrPipelineNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PipelineStages supplies the stage list for a pipeline in stored order.
func (s *Store) PipelineStages(ctx context.Context, id uint) ([]funnel.PipelineStage, error) {
	p, err := s.GetPipeline(ctx, id)
	if err != nil {
		return nil, err
	}
	stages := make([]funnel.PipelineStage, len(p.Stages))
	for i, st := range p.Stages {
		stages[i] = st.Funnel()
	}
	return stages, nil
}

// CreatePipeline validates the stages and stores the pipeline with them.
func (s *Store) CreatePipeline(ctx context.Context, name, description, industry string, stages []funnel.PipelineStage) (*models.Pipeline, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: pipeline name is required", funnel.ErrInvalidPipeline)
	}
	if err := funnel.Validate(stages); err != nil {
		return nil, err
	}

	p := models.Pipeline{Name: name, Description: description, Industry: industry, IsActive: true}
	for _, st := range stages {
		p.Stages = append(p.Stages, models.StageRow(st))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Pipeline{}).Where("name = ?", name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("pipeline %q %w", name, ErrDuplicate)
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("pipeline created", "pipeline_id", p.ID, "name", name, "stages", len(stages))
	return &p, nil
}

// SeedTemplates creates a pipeline for every template whose name is not
// taken yet. It returns how many were created.
func (s *Store) SeedTemplates(ctx context.Context, templates []funnel.Template) (int, error) {
	created := 0
	for _, t := range templates {
		_, err := s.CreatePipeline(ctx, t.Name, t.Description, t.Industry, t.Stages)
		if errors.Is(err, ErrDuplicate) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", t.Name, err)
		}
		created++
	}
	return created, nil
}

func orderStages(db *gorm.DB) *gorm.DB {
	return db.Order("stage_order ASC, id ASC")
}

// ─── Plans ────────────────────────────────────────────────────────────────────

// CreatePlan stores a plan for client, creating the client row on first use.
func (s *Store) CreatePlan(ctx context.Context, planName, clientName, owner string) (*models.StaffingPlan, error) {
	planName = strings.TrimSpace(planName)
	clientName = strings.TrimSpace(clientName)
	if planName == "" || clientName == "" {
		return nil, errors.New("plan name and client are required")
	}

	var plan models.StaffingPlan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.StaffingPlan{}).Where("plan_name = ?", planName).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("plan %q %w", planName, ErrDuplicate)
		}

		client := models.Client{Name: clientName}
		if err := tx.Where(models.Client{Name: clientName}).FirstOrCreate(&client).Error; err != nil {
			return err
		}

		plan = models.StaffingPlan{PlanName: planName, ClientID: client.ID, Client: client, CreatedBy: strings.TrimSpace(owner), Status: "Planning"}
		return tx.Omit("Client").Create(&plan).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("plan created", "plan_id", plan.ID, "plan", planName, "client", clientName, "owner", plan.CreatedBy)
	return &plan, nil
}

func (s *Store) GetPlan(ctx context.Context, id uint) (*models.StaffingPlan, error) {
	var plan models.StaffingPlan
	err := s.db.WithContext(ctx).Preload("Client").Preload("Roles").First(&plan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrPlanNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// AddRole attaches a hiring target to a plan. The pipeline must exist.
func (s *Store) AddRole(ctx context.Context, planID uint, role string, pipelineID uint, targetHires int, targetDate funnel.Date) (*models.PlanRole, error) {
	if _, err := s.GetPlan(ctx, planID); err != nil {
		return nil, err
	}
	if _, err := s.GetPipeline(ctx, pipelineID); err != nil {
		return nil, err
	}
	if targetHires < 1 {
		return nil, funnel.ErrInvalidTarget
	}
	if targetDate.IsZero() {
		return nil, errors.New("target date is required")
	}

	r := models.PlanRole{
		PlanID:      planID,
		Role:        strings.TrimSpace(role),
		PipelineID:  pipelineID,
		TargetHires: targetHires,
		TargetDate:  targetDate.Time(),
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) GetRole(ctx context.Context, planID, roleID uint) (*models.PlanRole, error) {
	var r models.PlanRole
	err := s.db.WithContext(ctx).Where("plan_id = ?", planID).First(&r, roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: plan %d role %d", ErrRoleNotFound, planID, roleID)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
