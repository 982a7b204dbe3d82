// Package matcher counts live candidates toward pipeline stages. Candidate
// records are loosely keyed, so lookups walk a fixed fallback ladder
// (exact → owner → client_role) and report which rung produced the count.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrClientNotResolved means the client name has no internal identifier.
	// It is not the same as a zero count.
	ErrClientNotResolved = errors.New("client not resolved")
	// ErrDataSourceUnavailable wraps any failure to query the candidate store.
	ErrDataSourceUnavailable = errors.New("candidate data source unavailable")
	ErrUnknownStage          = errors.New("no status mapping for stage")
)

// CountType selects which candidates a lookup counts.
type CountType string

const (
	Active   CountType = "active"
	Rejected CountType = "rejected"
	Exited   CountType = "exited"
)

// ParseCountType accepts "active", "rejected" or "exited"; empty means Active.
func ParseCountType(s string) (CountType, error) {
	switch CountType(s) {
	case "", Active:
		return Active, nil
	case Rejected, Exited:
		return CountType(s), nil
	}
	return "", fmt.Errorf("unknown count type %q", s)
}

// Source is the candidate data store. Implementations run the queries; the
// matcher owns the mapping from raw status strings to stage buckets.
type Source interface {
	// ResolveClient returns ErrClientNotResolved for unknown names.
	ResolveClient(ctx context.Context, name string) (uint, error)
	PlanOwner(ctx context.Context, planName string) (owner string, found bool, err error)
	// StatusCounts groups matching candidate records by raw status.
	StatusCounts(ctx context.Context, q Query) (map[string]int, error)
}

// Request is one stage count lookup.
type Request struct {
	Client     string
	PlanName   string
	Role       string
	Stage      *string
	Cumulative bool
	Type       CountType
}

// CountResult is the answer from the first ladder rung with a non-zero count,
// or from the broadest rung when every rung returned zero.
type CountResult struct {
	Count        int            `json:"count"`
	MatchLevel   Level          `json:"match_level"`
	Breakdown    map[string]int `json:"breakdown"`
	Unrecognized int            `json:"unrecognized"`

	// OutsidePipeline counts valid statuses that no stage of the table lists.
	OutsidePipeline int `json:"outside_pipeline"`
}

// Matcher holds no per-call state and is safe for concurrent use.
type Matcher struct {
	src    Source
	table  *Table
	ladder []Strategy
	log    *slog.Logger
}

type Option func(*Matcher)

func WithTable(t *Table) Option { return func(m *Matcher) { m.table = t } }

func WithLadder(ladder ...Strategy) Option { return func(m *Matcher) { m.ladder = ladder } }

func WithLogger(l *slog.Logger) Option { return func(m *Matcher) { m.log = l } }

func New(src Source, opts ...Option) *Matcher {
	m := &Matcher{src: src, table: DefaultTable(), ladder: DefaultLadder(), log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CountForStage counts candidates for one stage (Active) or for the whole
// plan role (Rejected, Exited, which ignore stage).
func (m *Matcher) CountForStage(ctx context.Context, client, planName, role string, stage *string, cumulative bool, countType CountType) (CountResult, error) {
	return m.Count(ctx, Request{
		Client:     client,
		PlanName:   planName,
		Role:       role,
		Stage:      stage,
		Cumulative: cumulative,
		Type:       countType,
	})
}

func (m *Matcher) Count(ctx context.Context, req Request) (CountResult, error) {
	wanted, err := m.wantedStatuses(req)
	if err != nil {
		return CountResult{MatchLevel: LevelNone}, err
	}

	clientID, err := m.src.ResolveClient(ctx, req.Client)
	if err != nil {
		return CountResult{MatchLevel: LevelNone}, sourceErr(err)
	}

	var last CountResult
	for _, rung := range m.ladder {
		q, ok, err := rung.Build(ctx, m.src, clientID, req)
		if err != nil {
			return CountResult{MatchLevel: LevelNone}, sourceErr(err)
		}
		if !ok {
			m.log.Debug("match level skipped", "level", rung.Level(), "plan", req.PlanName)
			continue
		}

		raw, err := m.src.StatusCounts(ctx, q)
		if err != nil {
			return CountResult{MatchLevel: LevelNone}, sourceErr(err)
		}

		last = m.tally(raw, wanted)
		last.MatchLevel = rung.Level()
		if last.Count > 0 {
			return last, nil
		}
	}

	if last.MatchLevel == "" {
		last = CountResult{MatchLevel: LevelNone, Breakdown: map[string]int{}}
	}
	return last, nil
}

func (m *Matcher) wantedStatuses(req Request) (statusSet, error) {
	switch req.Type {
	case Rejected:
		return rejectionStatuses, nil
	case Exited:
		return exitedStatuses, nil
	case Active, "":
		if req.Stage == nil {
			return nil, fmt.Errorf("%w: active count needs a stage", ErrUnknownStage)
		}
		statuses, err := m.table.StatusesFor(*req.Stage, req.Cumulative)
		if err != nil {
			return nil, err
		}
		return newStatusSet(statuses...), nil
	}
	return nil, fmt.Errorf("unknown count type %q", req.Type)
}

func (m *Matcher) tally(raw map[string]int, wanted statusSet) CountResult {
	res := CountResult{Breakdown: map[string]int{}}
	for rawStatus, n := range raw {
		s := ParseStatus(rawStatus)
		if s == StatusUnrecognized {
			res.Unrecognized += n
			continue
		}
		if !m.table.Known(s) {
			res.OutsidePipeline += n
			continue
		}
		if wanted[s] {
			res.Count += n
			res.Breakdown[rawStatus] += n
		}
	}
	return res
}

// sourceErr keeps ErrClientNotResolved as is and marks everything else as
// a data source failure.
func sourceErr(err error) error {
	if errors.Is(err, ErrClientNotResolved) || errors.Is(err, ErrDataSourceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDataSourceUnavailable, err)
}
