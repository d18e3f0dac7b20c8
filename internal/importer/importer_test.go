package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/PalletPlan/internal/model"
	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Label,Pallet,Case\nEuro,1200x800,400x300\nCrate,10x7,3x2\n")
	got := DetectCSVDelimiter(data)
	if got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Label;Pallet;Case\nEuro;1200x800;400x300\nCrate;10x7;3x2\n")
	got := DetectCSVDelimiter(data)
	if got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Label\tPallet\tCase\nEuro\t1200x800\t400x300\n")
	got := DetectCSVDelimiter(data)
	if got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_CombinedSizes(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Label", "Pallet", "Case", "Algorithm"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Label != 0 || mapping.Pallet != 1 || mapping.Case != 2 || mapping.Algorithm != 3 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.PalletWidth != -1 || mapping.CaseDepth != -1 {
		t.Errorf("expected split columns unset, got %+v", mapping)
	}
}

func TestDetectColumns_SplitSizes(t *testing.T) {
	row := []string{"SKU", "PALLET_WIDTH", "Pallet Depth", "case-width", "Case  Depth", "Strategy"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{
		Label: 0, Pallet: -1, PalletWidth: 1, PalletDepth: 2,
		Case: -1, CaseWidth: 3, CaseDepth: 4, Algorithm: 5,
	}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Euro", "1200", "800", "400", "300"})

	if isHeader {
		t.Error("expected no header")
	}
	if mapping.PalletWidth != 1 || mapping.CaseDepth != 4 || mapping.Algorithm != 5 {
		t.Errorf("unexpected positional mapping %+v", mapping)
	}
}

// ─── ImportCSVFromReader Tests ─────────────────────────────

func TestImportCSVFromReader_CombinedSizes(t *testing.T) {
	csv := "Label,Pallet,Case,Algorithm\nEuro,1200x800,400x300,n1\nCrate,10 x 7,3×2,\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(result.Jobs))
	}

	euro := result.Jobs[0]
	if euro.Label != "Euro" {
		t.Errorf("expected 'Euro', got '%s'", euro.Label)
	}
	if euro.Pallet != model.V(1200, 800) || euro.Case != model.V(400, 300) {
		t.Errorf("unexpected sizes %s / %s", euro.Pallet, euro.Case)
	}
	if euro.Algorithm != model.AlgorithmN1 {
		t.Errorf("expected n1, got %q", euro.Algorithm)
	}
	if result.Jobs[1].Algorithm != "" {
		t.Errorf("expected empty algorithm, got %q", result.Jobs[1].Algorithm)
	}
	if result.Jobs[1].Case != model.V(3, 2) {
		t.Errorf("expected case (3, 2), got %s", result.Jobs[1].Case)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	csv := "Euro,1200,800,400,300\nCrate,10,7,3,2,G4\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d (errors: %v)", len(result.Jobs), result.Errors)
	}
	if result.Jobs[1].Algorithm != model.AlgorithmG4 {
		t.Errorf("expected g4, got %q", result.Jobs[1].Algorithm)
	}
}

func TestImportCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	csv := "Ref,W,D,CW,CD\nEuro,1200,800,400,300\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d (errors: %v)", len(result.Jobs), result.Errors)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

func TestImportCSVFromReader_InvalidSize(t *testing.T) {
	csv := "Label,Pallet,Case\nEuro,1200 by 800,400x300\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Jobs) != 0 {
		t.Errorf("expected 0 jobs, got %d", len(result.Jobs))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Invalid pallet size") {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestImportCSVFromReader_FractionalDimension(t *testing.T) {
	csv := "Label,Pallet Width,Pallet Depth,Case Width,Case Depth\nEuro,1200.5,800,400,300\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Invalid pallet width") {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestImportCSVFromReader_ZeroSize(t *testing.T) {
	csv := "Label,Pallet,Case\nFlat,1200x0,400x300\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "must be positive") {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	csv := "Label,Pallet,Case Width\nEuro,1200x800,400\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Errors) == 0 {
		t.Fatal("expected error for missing column")
	}
	if !strings.Contains(result.Errors[0], "Case Depth") {
		t.Errorf("expected Case Depth to be reported missing, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_UnknownAlgorithmWarns(t *testing.T) {
	csv := "Label,Pallet,Case,Algorithm\nEuro,1200x800,400x300,genetic\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(result.Jobs))
	}
	if result.Jobs[0].Algorithm != "" {
		t.Errorf("expected default algorithm, got %q", result.Jobs[0].Algorithm)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Unknown algorithm 'genetic'") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unknown algorithm warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_EmptyLabelAndRows(t *testing.T) {
	csv := "Label,Pallet,Case\n,1200x800,400x300\n,,\n,10x7,3x2\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d (errors: %v)", len(result.Jobs), result.Errors)
	}
	if result.Jobs[0].Label != "Job 1" || result.Jobs[1].Label != "Job 2" {
		t.Errorf("unexpected labels %q, %q", result.Jobs[0].Label, result.Jobs[1].Label)
	}
}

// ─── ImportCSV Tests ───────────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	content := "Label;Pallet;Case\nEuro;1200x800;400x300\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportFile(path)

	if len(result.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d (errors: %v)", len(result.Jobs), result.Errors)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/jobs.csv")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportCSV(path)
	if len(result.Errors) != 1 || result.Errors[0] != "File is empty" {
		t.Errorf("expected empty file error, got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_SplitColumns(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Label", "Pallet Width", "Pallet Depth", "Case Width", "Case Depth", "Algorithm"},
		{"Euro", 1200, 800, 400, 300, "n1"},
		{"Crate", 10, 7, 3, 2, "g4"},
	})

	result := ImportFile(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(result.Jobs))
	}
	if result.Jobs[0].Pallet != model.V(1200, 800) {
		t.Errorf("expected pallet (1200, 800), got %s", result.Jobs[0].Pallet)
	}
	if result.Jobs[1].Algorithm != model.AlgorithmG4 {
		t.Errorf("expected g4, got %q", result.Jobs[1].Algorithm)
	}
}

func TestImportExcel_WithoutHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Euro", 1200, 800, 400, 300},
	})

	result := ImportExcel(path)
	if len(result.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d (errors: %v)", len(result.Jobs), result.Errors)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/jobs.xlsx")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}
