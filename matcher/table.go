package matcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
)

var ErrInvalidTable = errors.New("invalid status table")

// Bucket is one active pipeline stage and the statuses that place a
// candidate exactly at it.
type Bucket struct {
	Stage    string
	Statuses []Status
}

// Table maps stage names to status buckets. Buckets are ordered from the
// earliest stage to the latest; a cumulative lookup for a stage includes its
// own statuses plus every later bucket's.
type Table struct {
	buckets []Bucket
	index   map[string]int
}

// NewTable validates buckets: stage names unique, each status in at most one
// bucket, no exit statuses in any bucket.
func NewTable(buckets []Bucket) (*Table, error) {
	if len(buckets) == 0 {
		return nil, fmt.Errorf("%w: no buckets", ErrInvalidTable)
	}

	t := &Table{buckets: make([]Bucket, 0, len(buckets)), index: map[string]int{}}
	owner := map[Status]string{}
	for _, b := range buckets {
		key := normalize(b.Stage)
		if key == "" {
			return nil, fmt.Errorf("%w: bucket with empty stage name", ErrInvalidTable)
		}
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate stage %q", ErrInvalidTable, b.Stage)
		}
		for _, s := range b.Statuses {
			if s == StatusUnrecognized {
				return nil, fmt.Errorf("%w: stage %q has an unrecognized status", ErrInvalidTable, b.Stage)
			}
			if s.IsExit() {
				return nil, fmt.Errorf("%w: exit status %q in active stage %q", ErrInvalidTable, s, b.Stage)
			}
			if prev, taken := owner[s]; taken {
				return nil, fmt.Errorf("%w: status %q in both %q and %q", ErrInvalidTable, s, prev, b.Stage)
			}
			owner[s] = b.Stage
		}
		t.index[key] = len(t.buckets)
		t.buckets = append(t.buckets, Bucket{Stage: b.Stage, Statuses: append([]Status(nil), b.Statuses...)})
	}
	return t, nil
}

// DefaultTable is the stage layout used when a pipeline does not declare
// its own statuses.
func DefaultTable() *Table {
	t, err := NewTable([]Bucket{
		{Stage: "Initial Screening", Statuses: []Status{StatusInitialScreening, StatusSentToClient}},
		{Stage: "Technical Assessment", Statuses: []Status{StatusCodePairing, StatusTechnicalRound, StatusTechAssessment, StatusTechnicalAssessment}},
		{Stage: "Interview Process", Statuses: []Status{StatusInterviewScheduled, StatusInterviewRound, StatusInterviewCompleted}},
		{Stage: "Final Selection", Statuses: []Status{StatusSelected, StatusFinalRound}},
		{Stage: "Offer & Onboarding", Statuses: []Status{StatusOfferExtended, StatusOfferAccepted}},
		{Stage: "Staffed", Statuses: []Status{StatusStaffed}},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// TableFromStages builds a table from the statuses declared on a pipeline's
// plannable stages. It returns DefaultTable when no stage declares any.
func TableFromStages(stages []funnel.PipelineStage) (*Table, error) {
	plannable := funnel.PlannableStages(stages)

	declared := false
	buckets := make([]Bucket, 0, len(plannable))
	for _, st := range plannable {
		b := Bucket{Stage: st.Name}
		for _, raw := range st.Statuses {
			s := ParseStatus(raw)
			if s == StatusUnrecognized {
				return nil, fmt.Errorf("%w: stage %q lists unknown status %q", ErrInvalidTable, st.Name, raw)
			}
			b.Statuses = append(b.Statuses, s)
			declared = true
		}
		buckets = append(buckets, b)
	}
	if !declared {
		return DefaultTable(), nil
	}
	return NewTable(buckets)
}

// Stages returns the stage names in pipeline order.
func (t *Table) Stages() []string {
	out := make([]string, len(t.buckets))
	for i, b := range t.buckets {
		out[i] = b.Stage
	}
	return out
}

// StatusesFor returns the statuses that count toward stage. With cumulative
// set, statuses of every later stage are included: a candidate who reached
// a later stage also passed through this one.
func (t *Table) StatusesFor(stage string, cumulative bool) ([]Status, error) {
	i, ok := t.index[normalize(stage)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, strings.TrimSpace(stage))
	}
	if !cumulative {
		return append([]Status(nil), t.buckets[i].Statuses...), nil
	}
	var out []Status
	for _, b := range t.buckets[i:] {
		out = append(out, b.Statuses...)
	}
	return out, nil
}

// Known reports whether s appears in any bucket or exit set.
func (t *Table) Known(s Status) bool {
	if s == StatusUnrecognized {
		return false
	}
	if s.IsExit() {
		return true
	}
	for _, b := range t.buckets {
		for _, bs := range b.Statuses {
			if bs == s {
				return true
			}
		}
	}
	return false
}
