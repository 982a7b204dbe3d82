package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
)

// ========================
// DATABASE MODELS
// ========================

// Client is a hiring client; candidate records reference it by ID.
type Client struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// Pipeline is a named, ordered set of stages.
type Pipeline struct {
	gorm.Model
	Name        string          `gorm:"uniqueIndex;not null" json:"name"`
	Description string          `json:"description"`
	Industry    string          `json:"industry"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	Stages      []PipelineStage `gorm:"foreignKey:PipelineID;constraint:OnDelete:CASCADE" json:"stages"`
}

// PipelineStage is one stored stage row. Statuses is a comma-separated list
// of candidate statuses that place someone exactly at this stage.
type PipelineStage struct {
	gorm.Model
	PipelineID     uint    `gorm:"index;not null" json:"pipeline_id"`
	Name           string  `gorm:"not null" json:"name"`
	StageOrder     int     `json:"order"`
	ConversionRate float64 `json:"conversion_rate"`
	TATDays        int     `json:"tat_days"`
	Description    string  `json:"description"`
	Statuses       string  `json:"statuses"`
}

// Funnel converts the stored row into the calculator's stage type.
func (s PipelineStage) Funnel() funnel.PipelineStage {
	var statuses []string
	for _, raw := range strings.Split(s.Statuses, ",") {
		if v := strings.TrimSpace(raw); v != "" {
			statuses = append(statuses, v)
		}
	}
	return funnel.PipelineStage{
		Name:           s.Name,
		Order:          s.StageOrder,
		ConversionRate: s.ConversionRate,
		TATDays:        s.TATDays,
		Description:    s.Description,
		Statuses:       statuses,
	}
}

// StageRow is the inverse of PipelineStage.Funnel.
func StageRow(s funnel.PipelineStage) PipelineStage {
	return PipelineStage{
		Name:           s.Name,
		StageOrder:     s.Order,
		ConversionRate: s.ConversionRate,
		TATDays:        s.TATDays,
		Description:    s.Description,
		Statuses:       strings.Join(s.Statuses, ","),
	}
}

// StaffingPlan owns role rows. CreatedBy is the plan owner, the same
// free-text name recruiters put in a candidate's staffing owner field.
type StaffingPlan struct {
	gorm.Model
	PlanName  string     `gorm:"uniqueIndex;not null" json:"plan_name"`
	ClientID  uint       `gorm:"index;not null" json:"client_id"`
	Client    Client     `json:"client"`
	CreatedBy string     `json:"created_by"`
	Status    string     `gorm:"default:Planning" json:"status"`
	Roles     []PlanRole `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"roles"`
}

// PlanRole is one hiring target inside a plan, tied to exactly one pipeline.
type PlanRole struct {
	gorm.Model
	PlanID      uint      `gorm:"index;not null" json:"plan_id"`
	Role        string    `gorm:"not null" json:"role"`
	PipelineID  uint      `gorm:"not null" json:"pipeline_id"`
	TargetHires int       `json:"target_hires"`
	TargetDate  time.Time `json:"target_date"`
}

// CandidateRecord is one candidate as imported from the ATS. StaffingRole is
// the role as written on the plan; Role is the free-text role on the record.
type CandidateRecord struct {
	gorm.Model
	ExternalID      string `gorm:"uniqueIndex;not null" json:"external_id"`
	CandidateName   string `json:"candidate_name"`
	HireForClientID *uint  `gorm:"index" json:"hire_for_client_id"`
	StaffingPlanID  *uint  `gorm:"index" json:"staffing_plan_id"`
	StaffingRole    string `json:"staffing_role"`
	Role            string `gorm:"index" json:"role"`
	StaffingOwner   string `json:"staffing_owner"`
	Status          string `gorm:"index" json:"status"`
}

// PlanSnapshot is an audit copy of generated requirements or a reconciled
// view. Reads never use it as the source of truth.
type PlanSnapshot struct {
	gorm.Model
	PlanID  uint   `gorm:"index;not null" json:"plan_id"`
	RoleID  uint   `gorm:"index;not null" json:"role_id"`
	Kind    string `json:"kind"`
	Payload string `json:"payload"`
}

// ========================
// API REQUEST PAYLOADS
// ========================

type CalculateRequest struct {
	PipelineID  uint                   `json:"pipeline_id"`
	Stages      []funnel.PipelineStage `json:"stages"`
	TargetHires int                    `json:"target_hires" binding:"required"`
	TargetDate  funnel.Date            `json:"target_date"`
}

type ClassifyRequest struct {
	Actual   int         `json:"actual"`
	Required int         `json:"required"`
	NeededBy funnel.Date `json:"needed_by"`
	Today    funnel.Date `json:"today"`
}

type CreatePipelineRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Industry    string                 `json:"industry"`
	Stages      []funnel.PipelineStage `json:"stages" binding:"required"`
}

type FromTemplateRequest struct {
	Template string `json:"template" binding:"required"`
	Name     string `json:"name"`
}

type CreatePlanRequest struct {
	PlanName string `json:"plan_name" binding:"required"`
	Client   string `json:"client" binding:"required"`
	Owner    string `json:"owner"`
}

type AddRoleRequest struct {
	Role        string      `json:"role" binding:"required"`
	PipelineID  uint        `json:"pipeline_id" binding:"required"`
	TargetHires int         `json:"target_hires" binding:"required"`
	TargetDate  funnel.Date `json:"target_date"`
}
