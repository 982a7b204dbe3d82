// Package health classifies a pipeline stage as Green, Amber or Red by
// comparing the candidates actually at the stage with the required quota.
package health

import (
	"fmt"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
)

// Color is an ordered risk level, not a gradient.
type Color string

const (
	Green Color = "Green"
	Amber Color = "Amber"
	Red   Color = "Red"
)

// Rank orders colors by risk: Green 0, Amber 1, Red 2. Unknown values rank -1.
func (c Color) Rank() int {
	switch c {
	case Green:
		return 0
	case Amber:
		return 1
	case Red:
		return 2
	}
	return -1
}

// Worst returns the riskiest of colors, or "" when none are given.
func Worst(colors ...Color) Color {
	var worst Color
	for _, c := range colors {
		if c.Rank() > worst.Rank() {
			worst = c
		}
	}
	return worst
}

// StageHealth is derived from an (actual, required, neededBy, today) tuple
// and is never stored on its own.
type StageHealth struct {
	Color  Color  `json:"color"`
	Reason string `json:"reason"`
}

// Classify applies the stage health rules in order, first match wins:
//
//  1. required == 0                  → Red ("no profiles required")
//  2. past due and actual != required → Red ("past due date")
//  3. pct < 50 → Red, pct <= 80 → Amber, else Green
//
// A stage that is past due but exactly on target falls through to the
// percentage bands. today is passed in; nothing here reads the clock.
func Classify(actual, required int, neededBy, today funnel.Date) StageHealth {
	if required == 0 {
		return StageHealth{Color: Red, Reason: "no profiles required"}
	}

	pct := float64(actual) / float64(required) * 100
	pastDue := today.After(neededBy)

	if pastDue && actual != required {
		return StageHealth{Color: Red, Reason: fmt.Sprintf("past due date (%s)", neededBy)}
	}

	switch {
	case pct < 50:
		return StageHealth{Color: Red, Reason: fmt.Sprintf("%.1f%% (<50%%)", pct)}
	case pct <= 80:
		return StageHealth{Color: Amber, Reason: fmt.Sprintf("%.1f%% (50-80%%)", pct)}
	case pastDue:
		return StageHealth{Color: Green, Reason: fmt.Sprintf("%.1f%% (target met)", pct)}
	default:
		return StageHealth{Color: Green, Reason: fmt.Sprintf("%.1f%% (>80%%)", pct)}
	}
}
