package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/piwi3910/PalletPlan/internal/model"
)

func testPlans() []model.Plan {
	return []model.Plan{{
		ID:        "abc12345",
		JobID:     "def67890",
		Label:     "Crate",
		Pallet:    model.V(10, 7),
		Case:      model.V(3, 2),
		Algorithm: model.AlgorithmG4,
		Placements: model.Solution{
			{Pos: model.V(0, 0), Orientation: model.Horizontal},
			{Pos: model.V(0, 4), Orientation: model.Vertical},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
}

func TestSaveAndLoadPlans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "plans.json")
	plans := testPlans()

	if err := SavePlans(path, plans); err != nil {
		t.Fatalf("SavePlans failed: %v", err)
	}

	loaded, err := LoadPlans(path)
	if err != nil {
		t.Fatalf("LoadPlans failed: %v", err)
	}
	if diff := cmp.Diff(plans, loaded); diff != "" {
		t.Errorf("plans changed on reload (-want +got):\n%s", diff)
	}
}

func TestSavePlansWritesOrientationNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.json")
	if err := SavePlans(path, testPlans()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"orientation": "Vertical"`, `"version": "1.0.0"`, `"algorithm": "g4"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in saved file", want)
		}
	}
}

func TestLoadPlansErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadPlans(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"plans":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPlans(bad); err == nil {
		t.Error("expected error for missing version")
	}
}

func TestSavePlansNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := SavePlans(path, nil); err != nil {
		t.Fatal(err)
	}
	plans, err := LoadPlans(path)
	if err != nil {
		t.Fatal(err)
	}
	if plans == nil || len(plans) != 0 {
		t.Errorf("expected empty non-nil plans, got %v", plans)
	}
}
