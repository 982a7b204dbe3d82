package funnel

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
)

// StageRequirement is the quota and deadline one stage must meet for the
// downstream target to be reached. It is always recomputed from the pipeline
// and target; stored copies are snapshots only.
type StageRequirement struct {
	StageName           string  `json:"stage_name"`
	StageOrder          int     `json:"stage_order"`
	ConversionRatePct   float64 `json:"conversion_rate_pct"`
	TATDays             int     `json:"tat_days"`
	CandidatesNeeded    int     `json:"candidates_needed"`
	CandidatesConverted int     `json:"candidates_converted"`
	NeededByDate        Date    `json:"needed_by_date"`
}

// Calculate walks the pipeline backward from the hiring target and returns
// one requirement per plannable stage, in ascending stage order.
//
// Each stage must receive ceil(target / rate) entrants to deliver target
// advances, and must hold them TAT days before the next stage's deadline.
func Calculate(stages []PipelineStage, targetHires int, targetDate Date) ([]StageRequirement, error) {
	if targetHires < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTarget, targetHires)
	}

	plannable := PlannableStages(stages)
	if len(plannable) == 0 {
		return nil, ErrNoPlannableStages
	}
	sort.SliceStable(plannable, func(i, j int) bool { return plannable[i].Order > plannable[j].Order })

	reqs := make([]StageRequirement, 0, len(plannable))
	currentTarget := targetHires
	currentDate := targetDate

	for _, s := range plannable {
		if err := checkRate(s); err != nil {
			return nil, err
		}
		needed, ok := entrantsNeeded(currentTarget, s.ConversionRate)
		if !ok {
			return nil, fmt.Errorf("%w: stage %q needs more entrants than can be counted at %g%%", ErrInvalidPipeline, s.Name, s.ConversionRate)
		}
		neededBy := currentDate.AddDays(-s.TATDays)

		reqs = append(reqs, StageRequirement{
			StageName:           s.Name,
			StageOrder:          s.Order,
			ConversionRatePct:   s.ConversionRate,
			TATDays:             s.TATDays,
			CandidatesNeeded:    needed,
			CandidatesConverted: currentTarget,
			NeededByDate:        neededBy,
		})

		currentTarget = needed
		currentDate = neededBy
	}

	for i, j := 0, len(reqs)-1; i < j; i, j = i+1, j-1 {
		reqs[i], reqs[j] = reqs[j], reqs[i]
	}
	return reqs, nil
}

// entrantsNeeded is the exact ceil(target / (ratePct/100)), taking ratePct as
// the shortest decimal that prints as it (0.8 is 8/10, not its binary value).
// ok is false when the count exceeds MaxInt32.
func entrantsNeeded(target int, ratePct float64) (int, bool) {
	rate, ok := new(big.Rat).SetString(strconv.FormatFloat(ratePct, 'f', -1, 64))
	if !ok || rate.Sign() <= 0 {
		return 0, false
	}
	q := new(big.Rat).SetInt64(int64(target))
	q.Mul(q, big.NewRat(100, 1)).Quo(q, rate)

	n, rem := new(big.Int).QuoRem(q.Num(), q.Denom(), new(big.Int))
	if rem.Sign() != 0 {
		n.Add(n, big.NewInt(1))
	}
	if !n.IsInt64() || n.Int64() > math.MaxInt32 {
		return 0, false
	}
	return int(n.Int64()), true
}
