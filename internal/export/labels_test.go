package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PalletPlan/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestPlans()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFileWritten(t, path, 500)
}

func TestExportLabels_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	if err := ExportLabels(path, nil); !errors.Is(err, ErrNoPlans) {
		t.Fatalf("expected ErrNoPlans, got %v", err)
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestPlans())

	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}

	crate := labels[0]
	if crate.Label != "Crate 3x2" || crate.PlanID != "p1" {
		t.Errorf("unexpected first label %+v", crate)
	}
	if crate.Cases != 11 || crate.Horizontal != 6 || crate.Vertical != 5 {
		t.Errorf("expected 11 cases (6 H, 5 V), got %d (%d H, %d V)", crate.Cases, crate.Horizontal, crate.Vertical)
	}

	euro := labels[1]
	if euro.Pallet != model.V(1200, 800) || euro.Algorithm != model.AlgorithmN1 {
		t.Errorf("unexpected second label %+v", euro)
	}
	if euro.Horizontal != 0 || euro.Vertical != 8 {
		t.Errorf("expected 8 vertical cases, got %d H, %d V", euro.Horizontal, euro.Vertical)
	}
}

func TestExportLabels_MultiplePages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_labels.pdf")

	// 35 tags spill onto a second Avery sheet
	plans := make([]model.Plan, 35)
	for i := range plans {
		plans[i] = model.Plan{
			ID:     fmt.Sprintf("p%02d", i),
			Label:  fmt.Sprintf("Outbound load with a rather long name %d", i+1),
			Pallet: model.V(1200, 800), Case: model.V(400, 300),
			Algorithm: model.AlgorithmG4,
		}
	}

	if err := ExportLabels(path, plans); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFileWritten(t, path, 500)
}
