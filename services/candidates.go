package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tadeyemo32/vanguard-staffing/matcher"
	"github.com/tadeyemo32/vanguard-staffing/models"
)

// ─── matcher.Source ──────────────────────────────────────────────────────────

// ResolveClient maps a client name to its ID, caching hits.
func (s *Store) ResolveClient(ctx context.Context, name string) (uint, error) {
	if id, ok := s.clients.get(name); ok {
		return id, nil
	}

	var client models.Client
	err := s.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %q", matcher.ErrClientNotResolved, name)
	}
	if err != nil {
		return 0, err
	}
	s.clients.set(name, client.ID)
	return client.ID, nil
}

// PlanOwner returns the plan's created_by value.
func (s *Store) PlanOwner(ctx context.Context, planName string) (string, bool, error) {
	var plan models.StaffingPlan
	err := s.db.WithContext(ctx).Select("created_by").Where("plan_name = ?", planName).Limit(1).Take(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return plan.CreatedBy, true, nil
}

type statusCount struct {
	Status string
	Total  int
}

// StatusCounts groups candidate records matching q by raw status.
func (s *Store) StatusCounts(ctx context.Context, q matcher.Query) (map[string]int, error) {
	tx := s.db.WithContext(ctx).
		Model(&models.CandidateRecord{}).
		Select("candidate_records.status AS status, COUNT(*) AS total").
		Where("candidate_records.hire_for_client_id = ?", q.ClientID)

	switch q.Level {
	case matcher.LevelExact:
		tx = tx.Joins("JOIN staffing_plans ON staffing_plans.id = candidate_records.staffing_plan_id AND staffing_plans.deleted_at IS NULL").
			Where("staffing_plans.plan_name = ? AND candidate_records.staffing_role = ?", q.PlanName, q.Role)
	case matcher.LevelOwner:
		tx = tx.Where("candidate_records.staffing_owner = ? AND candidate_records.role = ?", q.Owner, q.Role)
	case matcher.LevelClientRole:
		tx = tx.Where("candidate_records.role = ?", q.Role)
	default:
		return nil, fmt.Errorf("unsupported match level %q", q.Level)
	}

	var rows []statusCount
	if err := tx.Group("candidate_records.status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

// ─── matcher.CensusSource ────────────────────────────────────────────────────

func (s *Store) StatusCensus(ctx context.Context) (map[string]int, error) {
	var rows []statusCount
	err := s.db.WithContext(ctx).
		Model(&models.CandidateRecord{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

func (s *Store) MissingClientOrRole(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.CandidateRecord{}).
		Where("hire_for_client_id IS NULL OR role IS NULL OR role = ''").
		Count(&n).Error
	return int(n), err
}

func (s *Store) OrphanedPlanRefs(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.CandidateRecord{}).
		Joins("LEFT JOIN staffing_plans ON staffing_plans.id = candidate_records.staffing_plan_id AND staffing_plans.deleted_at IS NULL").
		Where("candidate_records.staffing_plan_id IS NOT NULL AND staffing_plans.id IS NULL").
		Count(&n).Error
	return int(n), err
}

// ─── Import ──────────────────────────────────────────────────────────────────

// ImportStats summarises one ImportCandidates run.
type ImportStats struct {
	Total    int `json:"total"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

// ImportCandidates upserts rows by external ID. Clients are created on first
// sight; plan names that match no plan leave the plan reference empty, so
// those records are only reachable through the owner and client_role levels.
func (s *Store) ImportCandidates(ctx context.Context, rows []CandidateRow) (ImportStats, error) {
	stats := ImportStats{Total: len(rows)}
	clientIDs := map[string]uint{}
	planIDs := map[string]*uint{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if row.ExternalID == "" || row.Status == "" {
				stats.Skipped++
				continue
			}

			rec := models.CandidateRecord{
				ExternalID:    row.ExternalID,
				CandidateName: row.Name,
				StaffingRole:  row.StaffingRole,
				Role:          row.Role,
				StaffingOwner: row.Owner,
				Status:        row.Status,
			}

			if row.Client != "" {
				id, ok := clientIDs[row.Client]
				if !ok {
					client := models.Client{Name: row.Client}
					if err := tx.Where(models.Client{Name: row.Client}).FirstOrCreate(&client).Error; err != nil {
						return err
					}
					id = client.ID
					clientIDs[row.Client] = id
				}
				rec.HireForClientID = &id
			}

			if row.PlanName != "" {
				planID, ok := planIDs[row.PlanName]
				if !ok {
					var plan models.StaffingPlan
					err := tx.Select("id").Where("plan_name = ?", row.PlanName).Take(&plan).Error
					switch {
					case err == nil:
						planID = &plan.ID
					case !errors.Is(err, gorm.ErrRecordNotFound):
						return err
					}
					planIDs[row.PlanName] = planID
				}
				rec.StaffingPlanID = planID
			}

			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "external_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"candidate_name", "hire_for_client_id", "staffing_plan_id", "staffing_role", "role", "staffing_owner", "status", "updated_at"}),
			}).Create(&rec).Error
			if err != nil {
				return fmt.Errorf("candidate %s: %w", row.ExternalID, err)
			}
			stats.Upserted++
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	s.log.Info("candidates imported", "total", stats.Total, "upserted", stats.Upserted, "skipped", stats.Skipped)
	return stats, nil
}
