package services

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tadeyemo32/vanguard-staffing/models"
)

const (
	SnapshotRequirements = "requirements"
	SnapshotReconciled   = "reconciled"
)

// SnapshotEntry is a stored snapshot with its payload left as raw JSON.
type SnapshotEntry struct {
	ID        uint            `json:"id"`
	Kind      string          `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// SaveSnapshot stores v as an audit record for one plan role.
func (s *Store) SaveSnapshot(ctx context.Context, planID, roleID uint, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", kind, err)
	}
	snap := models.PlanSnapshot{PlanID: planID, RoleID: roleID, Kind: kind, Payload: string(payload)}
	return s.db.WithContext(ctx).Create(&snap).Error
}

// ListSnapshots returns up to limit snapshots for a role, newest first.
// An empty kind returns every kind.
func (s *Store) ListSnapshots(ctx context.Context, planID, roleID uint, kind string, limit int) ([]SnapshotEntry, error) {
	tx := s.db.WithContext(ctx).Where("plan_id = ? AND role_id = ?", planID, roleID)
	if kind != "" {
		tx = tx.Where("kind = ?", kind)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var snaps []models.PlanSnapshot
	if err := tx.Order("created_at DESC, id DESC").Find(&snaps).Error; err != nil {
		return nil, err
	}

	out := make([]SnapshotEntry, len(snaps))
	for i, sn := range snaps {
		out[i] = SnapshotEntry{ID: sn.ID, Kind: sn.Kind, CreatedAt: sn.CreatedAt, Payload: json.RawMessage(sn.Payload)}
	}
	return out, nil
}
