package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
	"github.com/tadeyemo32/vanguard-staffing/health"
	"github.com/tadeyemo32/vanguard-staffing/internal/logging"
	"github.com/tadeyemo32/vanguard-staffing/matcher"
)

const (
	HealthKnown   = "known"
	HealthUnknown = "unknown"
)

// StageActuals is what the matcher found for one stage. Error is set instead
// of a zero count when the lookup failed. Rejected and exited counts ignore
// the stage, so every stage of a role carries the same role-wide totals; they
// are nil when that lookup failed.
type StageActuals struct {
	StageName     string         `json:"stage_name"`
	ActiveCount   int            `json:"active_count"`
	MatchLevel    matcher.Level  `json:"match_level"`
	Breakdown     map[string]int `json:"breakdown,omitempty"`
	RejectedCount *int           `json:"rejected_count"`
	ExitedCount   *int           `json:"exited_count"`
	Error         string         `json:"error,omitempty"`
}

// ReconciledStageView joins a requirement, its actuals and its health.
type ReconciledStageView struct {
	Requirement         funnel.StageRequirement `json:"requirement"`
	Actuals             StageActuals            `json:"actuals"`
	Health              *health.StageHealth     `json:"health"`
	HealthState         string                  `json:"health_state"`
	ActualConversionPct float64                 `json:"actual_conversion_pct"`
}

// RoleView is the reconciled plan for one role.
type RoleView struct {
	PlanID        uint                  `json:"plan_id"`
	RoleID        uint                  `json:"role_id"`
	PlanName      string                `json:"plan_name"`
	Client        string                `json:"client"`
	Role          string                `json:"role"`
	PipelineID    uint                  `json:"pipeline_id"`
	TargetHires   int                   `json:"target_hires"`
	TargetDate    funnel.Date           `json:"target_date"`
	Today         funnel.Date           `json:"today"`
	Cumulative    bool                  `json:"cumulative"`
	Stages        []ReconciledStageView `json:"stages"`
	RejectedCount *int                  `json:"rejected_count"`
	ExitedCount   *int                  `json:"exited_count"`
	Overall       health.Color          `json:"overall"`
	UnknownStages int                   `json:"unknown_stages"`
}

// PlannerConfig tunes the reconciliation fan-out.
type PlannerConfig struct {
	MatchTimeout time.Duration
	Parallel     int
	Cumulative   bool
}

// Planner combines the calculator, the matcher and the classifier for stored
// plan roles.
type Planner struct {
	store *Store
	src   matcher.Source
	cfg   PlannerConfig
	now   func() time.Time
	log   *slog.Logger
}

// NewPlanner reads plans from store and candidates from src. src is usually
// the store itself.
func NewPlanner(store *Store, src matcher.Source, cfg PlannerConfig) *Planner {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	return &Planner{store: store, src: src, cfg: cfg, now: time.Now, log: logging.New("planner")}
}

func (p *Planner) Store() *Store { return p.store }

func (p *Planner) Today() funnel.Date { return funnel.DateOf(p.now()) }

// DefaultCumulative is the counting mode used when a request does not pick one.
func (p *Planner) DefaultCumulative() bool { return p.cfg.Cumulative }

type roleContext struct {
	planName   string
	client     string
	role       string
	pipelineID uint
	target     int
	targetDate funnel.Date
	stages     []funnel.PipelineStage
}

func (p *Planner) loadRole(ctx context.Context, planID, roleID uint) (roleContext, error) {
	plan, err := p.store.GetPlan(ctx, planID)
	if err != nil {
		return roleContext{}, err
	}
	role, err := p.store.GetRole(ctx, planID, roleID)
	if err != nil {
		return roleContext{}, err
	}
	stages, err := p.store.PipelineStages(ctx, role.PipelineID)
	if err != nil {
		return roleContext{}, err
	}
	return roleContext{
		planName:   plan.PlanName,
		client:     plan.Client.Name,
		role:       role.Role,
		pipelineID: role.PipelineID,
		target:     role.TargetHires,
		targetDate: funnel.DateOf(role.TargetDate),
		stages:     stages,
	}, nil
}

// GenerateRequirements runs the calculator for a stored role and keeps a
// snapshot of the result.
func (p *Planner) GenerateRequirements(ctx context.Context, planID, roleID uint) ([]funnel.StageRequirement, error) {
	rc, err := p.loadRole(ctx, planID, roleID)
	if err != nil {
		return nil, err
	}
	reqs, err := funnel.Calculate(rc.stages, rc.target, rc.targetDate)
	if err != nil {
		return nil, err
	}
	if err := p.store.SaveSnapshot(ctx, planID, roleID, SnapshotRequirements, reqs); err != nil {
		return nil, err
	}
	p.log.Info("requirements generated", "plan_id", planID, "role_id", roleID, "stages", len(reqs))
	return reqs, nil
}

// Reconcile computes requirements, looks up actuals for every stage in
// parallel and classifies each stage as of today. A failed stage lookup
// marks only that stage unknown; cancellation of ctx discards the view.
func (p *Planner) Reconcile(ctx context.Context, planID, roleID uint, today funnel.Date, cumulative bool) (*RoleView, error) {
	rc, err := p.loadRole(ctx, planID, roleID)
	if err != nil {
		return nil, err
	}
	reqs, err := funnel.Calculate(rc.stages, rc.target, rc.targetDate)
	if err != nil {
		return nil, err
	}
	table, err := matcher.TableFromStages(rc.stages)
	if err != nil {
		return nil, err
	}
	if today.IsZero() {
		today = p.Today()
	}

	m := matcher.New(p.src, matcher.WithTable(table), matcher.WithLogger(p.log))

	matchCtx := ctx
	if p.cfg.MatchTimeout > 0 {
		var cancel context.CancelFunc
		matchCtx, cancel = context.WithTimeout(ctx, p.cfg.MatchTimeout)
		defer cancel()
	}

	actuals := make([]StageActuals, len(reqs))
	var rejected, exited *int

	g, gctx := errgroup.WithContext(matchCtx)
	g.SetLimit(p.cfg.Parallel)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			stage := req.StageName
			res, err := m.CountForStage(gctx, rc.client, rc.planName, rc.role, &stage, cumulative, matcher.Active)
			a := StageActuals{StageName: stage, ActiveCount: res.Count, MatchLevel: res.MatchLevel, Breakdown: res.Breakdown}
			if err != nil {
				a = StageActuals{StageName: stage, MatchLevel: matcher.LevelNone, Error: err.Error()}
				p.log.Warn("stage lookup failed", "plan", rc.planName, "role", rc.role, "stage", stage, "error", err)
			}
			actuals[i] = a
			return nil
		})
	}
	for _, ct := range []matcher.CountType{matcher.Rejected, matcher.Exited} {
		ct := ct
		g.Go(func() error {
			res, err := m.CountForStage(gctx, rc.client, rc.planName, rc.role, nil, false, ct)
			if err != nil {
				p.log.Warn("exit count failed", "plan", rc.planName, "role", rc.role, "type", ct, "error", err)
				return nil
			}
			n := res.Count
			if ct == matcher.Rejected {
				rejected = &n
			} else {
				exited = &n
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view := &RoleView{
		PlanID:        planID,
		RoleID:        roleID,
		PlanName:      rc.planName,
		Client:        rc.client,
		Role:          rc.role,
		PipelineID:    rc.pipelineID,
		TargetHires:   rc.target,
		TargetDate:    rc.targetDate,
		Today:         today,
		Cumulative:    cumulative,
		Stages:        make([]ReconciledStageView, len(reqs)),
		RejectedCount: rejected,
		ExitedCount:   exited,
	}

	var colors []health.Color
	for i, req := range reqs {
		actuals[i].RejectedCount = rejected
		actuals[i].ExitedCount = exited
		sv := ReconciledStageView{Requirement: req, Actuals: actuals[i], HealthState: HealthUnknown}
		if actuals[i].Error == "" {
			h := health.Classify(actuals[i].ActiveCount, req.CandidatesNeeded, req.NeededByDate, today)
			sv.Health = &h
			sv.HealthState = HealthKnown
			sv.ActualConversionPct = conversionPct(actuals[i].ActiveCount, req.CandidatesNeeded)
			colors = append(colors, h.Color)
		} else {
			view.UnknownStages++
		}
		view.Stages[i] = sv
	}
	view.Overall = health.Worst(colors...)

	if err := p.store.SaveSnapshot(ctx, planID, roleID, SnapshotReconciled, view); err != nil {
		p.log.Error("failed to save reconciled snapshot", "plan_id", planID, "role_id", roleID, "error", err)
	}
	p.log.Info("role reconciled", "plan_id", planID, "role_id", roleID, "overall", view.Overall, "unknown_stages", view.UnknownStages)
	return view, nil
}

// conversionPct is actual/required as a percentage with one decimal.
func conversionPct(actual, required int) float64 {
	if required <= 0 {
		return 0
	}
	return math.Round(float64(actual)*1000/float64(required)) / 10
}

// IsNotFound reports whether err means a plan, role or pipeline is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound) || errors.Is(err, ErrRoleNotFound) || errors.Is(err, ErrPipelineNotFound)
}

// CountCandidates is a single matcher lookup against the planner's source,
// using the stage statuses of the named plan role's pipeline when given.
func (p *Planner) CountCandidates(ctx context.Context, req matcher.Request, stages []funnel.PipelineStage) (matcher.CountResult, error) {
	opts := []matcher.Option{matcher.WithLogger(p.log)}
	if len(stages) > 0 {
		table, err := matcher.TableFromStages(stages)
		if err != nil {
			return matcher.CountResult{}, err
		}
		opts = append(opts, matcher.WithTable(table))
	}
	if p.cfg.MatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.MatchTimeout)
		defer cancel()
	}
	res, err := matcher.New(p.src, opts...).Count(ctx, req)
	if err != nil {
		return res, fmt.Errorf("count %s candidates: %w", req.Type, err)
	}
	return res, nil
}
