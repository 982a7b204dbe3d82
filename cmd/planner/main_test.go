package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tadeyemo32/vanguard-staffing/services"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCalculate_Template(t *testing.T) {
	out, err := execute(t, "calculate", "--template", "standard engineering hire", "--target", "4", "--date", "2026-01-30")
	if err != nil {
		t.Fatalf("calculate: %v\n%s", err, out)
	}
	for _, want := range []string{"Initial Screening", "28", "2026-01-12", "Staffed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Rejected") {
		t.Errorf("exit stage in output:\n%s", out)
	}
}

func TestCalculate_PipelineFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	yaml := `name: Two Step
stages:
  - name: Screen
    order: 1
    conversion_rate: 25
    tat_days: 4
  - name: Hired
    order: 2
    conversion_rate: 100
    tat_days: 0
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "calculate", "--template", "", "--pipeline", path, "--target", "3", "--date", "2026-03-10")
	if err != nil {
		t.Fatalf("calculate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "12") || !strings.Contains(out, "2026-03-06") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPerformance_Template(t *testing.T) {
	out, err := execute(t, "performance", "--pipeline", "", "--template", "Fast Track Sales", "--industry", "Sales")
	if err != nil {
		t.Fatalf("performance: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Total TAT:           7 days") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestClassify(t *testing.T) {
	out, err := execute(t, "classify", "--actual", "4", "--required", "5", "--needed-by", "2026-02-01", "--today", "2026-01-20")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !strings.HasPrefix(out, "Amber") {
		t.Errorf("output = %q, want Amber", out)
	}
}

func TestCountAndQuality(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "staffing.db")
	gdb, err := services.OpenDB(dbPath, false)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	store := services.NewStore(gdb, time.Minute)
	ctx := context.Background()
	if _, err := store.CreatePlan(ctx, "Q1 Hiring", "Acme", "dana"); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	_, err = store.ImportCandidates(ctx, []services.CandidateRow{
		{ExternalID: "1", Client: "Acme", PlanName: "Q1 Hiring", StaffingRole: "QA", Role: "QA", Owner: "dana", Status: "Staffed"},
		{ExternalID: "2", Client: "Acme", PlanName: "Q1 Hiring", StaffingRole: "QA", Role: "QA", Owner: "dana", Status: "Ghosted"},
	})
	if err != nil {
		t.Fatalf("ImportCandidates: %v", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}

	out, err := execute(t, "count", "--db", dbPath, "--client", "Acme", "--plan", "Q1 Hiring", "--role", "QA", "--stage", "Staffed", "--type", "active")
	if err != nil {
		t.Fatalf("count: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Count:        1") || !strings.Contains(out, "exact") {
		t.Errorf("unexpected count output:\n%s", out)
	}

	out, err = execute(t, "quality", "--db", dbPath)
	if err != nil {
		t.Fatalf("quality: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"Ghosted": 1`) {
		t.Errorf("unexpected quality output:\n%s", out)
	}
}

func TestHashKey(t *testing.T) {
	out, err := execute(t, "hash-key", "secret")
	if err != nil {
		t.Fatalf("hash-key: %v", err)
	}
	if !services.CheckKeyHash("secret", strings.TrimSpace(out)) {
		t.Errorf("printed hash does not verify: %q", out)
	}
}
