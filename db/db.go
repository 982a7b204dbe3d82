// Package db reads the candidate tables with plain database/sql over
// mattn/go-sqlite3. The CLI uses it to answer count queries against a copy
// of the server database without loading the ORM.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tadeyemo32/vanguard-staffing/matcher"
)

// InitDB opens dataSourceName and checks the connection.
func InitDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("connecting to sqlite3 db %s: %w", dataSourceName, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging db: %w", err)
	}
	return db, nil
}

// CandidateSource implements matcher.Source and matcher.CensusSource with
// hand-written queries over the same tables the server migrates.
type CandidateSource struct {
	db *sql.DB
}

func NewCandidateSource(db *sql.DB) *CandidateSource {
	return &CandidateSource{db: db}
}

func (s *CandidateSource) ResolveClient(ctx context.Context, name string) (uint, error) {
	var id uint
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM clients WHERE name = ? AND deleted_at IS NULL LIMIT 1`,
		strings.TrimSpace(name)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", matcher.ErrClientNotResolved, name)
	}
	return id, err
}

func (s *CandidateSource) PlanOwner(ctx context.Context, planName string) (string, bool, error) {
	var owner sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT created_by FROM staffing_plans WHERE plan_name = ? AND deleted_at IS NULL LIMIT 1`,
		planName).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner.String, true, nil
}

const countSelect = `SELECT cr.status, COUNT(*) FROM candidate_records cr `

func (s *CandidateSource) StatusCounts(ctx context.Context, q matcher.Query) (map[string]int, error) {
	var (
		query string
		args  []any
	)
	switch q.Level {
	case matcher.LevelExact:
		query = countSelect +
			`JOIN staffing_plans sp ON sp.id = cr.staffing_plan_id AND sp.deleted_at IS NULL
			 WHERE cr.deleted_at IS NULL AND cr.hire_for_client_id = ? AND sp.plan_name = ? AND cr.staffing_role = ?`
		args = []any{q.ClientID, q.PlanName, q.Role}
	case matcher.LevelOwner:
		query = countSelect +
			`WHERE cr.deleted_at IS NULL AND cr.hire_for_client_id = ? AND cr.staffing_owner = ? AND cr.role = ?`
		args = []any{q.ClientID, q.Owner, q.Role}
	case matcher.LevelClientRole:
		query = countSelect +
			`WHERE cr.deleted_at IS NULL AND cr.hire_for_client_id = ? AND cr.role = ?`
		args = []any{q.ClientID, q.Role}
	default:
		return nil, fmt.Errorf("unsupported match level %q", q.Level)
	}
	return s.groupCounts(ctx, query+` GROUP BY cr.status`, args...)
}

func (s *CandidateSource) StatusCensus(ctx context.Context) (map[string]int, error) {
	return s.groupCounts(ctx, `SELECT status, COUNT(*) FROM candidate_records WHERE deleted_at IS NULL GROUP BY status`)
}

func (s *CandidateSource) MissingClientOrRole(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM candidate_records
		WHERE deleted_at IS NULL AND (hire_for_client_id IS NULL OR role IS NULL OR role = '')`)
}

func (s *CandidateSource) OrphanedPlanRefs(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM candidate_records cr
		LEFT JOIN staffing_plans sp ON sp.id = cr.staffing_plan_id AND sp.deleted_at IS NULL
		WHERE cr.deleted_at IS NULL AND cr.staffing_plan_id IS NOT NULL AND sp.id IS NULL`)
}

func (s *CandidateSource) groupCounts(ctx context.Context, query string, args ...any) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status sql.NullString
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status.String] += n
	}
	return out, rows.Err()
}

func (s *CandidateSource) count(ctx context.Context, query string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}
