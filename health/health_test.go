package health

import (
	"strings"
	"testing"
	"time"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
)

var (
	due      = funnel.NewDate(2026, time.March, 10)
	onTime   = funnel.NewDate(2026, time.March, 5)
	sameDay  = funnel.NewDate(2026, time.March, 10)
	pastDate = funnel.NewDate(2026, time.March, 11)
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		actual     int
		required   int
		today      funnel.Date
		want       Color
		wantReason string
	}{
		{"zero required", 5, 0, onTime, Red, "no profiles required"},
		{"zero required past due", 0, 0, pastDate, Red, "no profiles required"},
		{"past due under target", 9, 10, pastDate, Red, "past due date"},
		{"past due over target", 12, 10, pastDate, Red, "past due date"},
		{"past due exactly met", 10, 10, pastDate, Green, "100.0% (target met)"},
		{"due today not past", 1, 10, sameDay, Red, "10.0% (<50%)"},
		{"49 percent", 49, 100, onTime, Red, "49.0% (<50%)"},
		{"50 percent boundary", 5, 10, onTime, Amber, "50.0% (50-80%)"},
		{"80 percent boundary", 8, 10, onTime, Amber, "80.0% (50-80%)"},
		{"81 percent", 81, 100, onTime, Green, "81.0% (>80%)"},
		{"over target on time", 15, 10, onTime, Green, "150.0% (>80%)"},
		{"nothing yet", 0, 28, onTime, Red, "0.0% (<50%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.actual, tt.required, due, tt.today)
			if got.Color != tt.want {
				t.Errorf("Color = %s, want %s (reason %q)", got.Color, tt.want, got.Reason)
			}
			if !strings.HasPrefix(got.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want prefix %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestClassify_PastDueMetNeverForcedRed(t *testing.T) {
	for required := 1; required <= 50; required++ {
		got := Classify(required, required, due, pastDate)
		if got.Color == Red {
			t.Fatalf("required %d met but late: got Red (%s)", required, got.Reason)
		}
	}
}

func TestWorst(t *testing.T) {
	tests := []struct {
		in   []Color
		want Color
	}{
		{nil, ""},
		{[]Color{Green}, Green},
		{[]Color{Green, Amber, Green}, Amber},
		{[]Color{Amber, Red, Green}, Red},
	}
	for _, tt := range tests {
		if got := Worst(tt.in...); got != tt.want {
			t.Errorf("Worst(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
