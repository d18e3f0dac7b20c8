package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/PalletPlan/internal/model"
)

// planFileVersion is written into every saved plan file.
const planFileVersion = "1.0.0"

// PlanFile is the on-disk form of a set of plans.
type PlanFile struct {
	Version string       `json:"version"`
	SavedAt time.Time    `json:"saved_at"`
	Plans   []model.Plan `json:"plans"`
}

// SavePlans writes plans to path as indented JSON.
func SavePlans(path string, plans []model.Plan) error {
	file := PlanFile{
		Version: planFileVersion,
		SavedAt: time.Now().UTC(),
		Plans:   plans,
	}
	if file.Plans == nil {
		file.Plans = []model.Plan{}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plans: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plan directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// LoadPlans reads plans written by SavePlans.
func LoadPlans(path string) ([]model.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	var file PlanFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if file.Version == "" {
		return nil, fmt.Errorf("invalid plan file: missing version field")
	}
	if file.Plans == nil {
		file.Plans = []model.Plan{}
	}
	return file.Plans, nil
}
