// Package importer provides CSV and Excel import functionality for job lists.
// It supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/PalletPlan/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Jobs     []model.Job
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// Pallet and Case hold combined size cells such as "1200x800"; the
// width/depth columns are used when no combined column is present.
type ColumnMapping struct {
	Label       int
	Pallet      int
	PalletWidth int
	PalletDepth int
	Case        int
	CaseWidth   int
	CaseDepth   int
	Algorithm   int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":        {"label", "name", "job", "description", "desc", "sku", "item"},
	"pallet":       {"pallet", "pallet size", "bin", "bin size"},
	"pallet_width": {"pallet width", "pallet w", "pallet x", "pallet length", "bin width"},
	"pallet_depth": {"pallet depth", "pallet d", "pallet y", "bin depth"},
	"case":         {"case", "case size", "box", "box size", "carton"},
	"case_width":   {"case width", "case w", "case x", "box width", "carton width"},
	"case_depth":   {"case depth", "case d", "case y", "box depth", "carton depth"},
	"algorithm":    {"algorithm", "algo", "strategy", "method"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or a default positional
// mapping (label, pallet width, pallet depth, case width, case depth, algorithm)
// and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{-1, -1, -1, -1, -1, -1, -1, -1}
	roles := map[string]*int{
		"label":        &mapping.Label,
		"pallet":       &mapping.Pallet,
		"pallet_width": &mapping.PalletWidth,
		"pallet_depth": &mapping.PalletDepth,
		"case":         &mapping.Case,
		"case_width":   &mapping.CaseWidth,
		"case_depth":   &mapping.CaseDepth,
		"algorithm":    &mapping.Algorithm,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.Join(strings.Fields(strings.ToLower(cell)), " ")
		normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if idx := roles[role]; *idx == -1 {
					*idx = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			Label:       0,
			Pallet:      -1,
			PalletWidth: 1,
			PalletDepth: 2,
			Case:        -1,
			CaseWidth:   3,
			CaseDepth:   4,
			Algorithm:   5,
		}, false
	}

	return mapping, true
}

// missingColumns lists the size columns a header mapping lacks.
func (m ColumnMapping) missingColumns() []string {
	var missing []string
	if m.Pallet == -1 {
		if m.PalletWidth == -1 {
			missing = append(missing, "Pallet Width")
		}
		if m.PalletDepth == -1 {
			missing = append(missing, "Pallet Depth")
		}
	}
	if m.Case == -1 {
		if m.CaseWidth == -1 {
			missing = append(missing, "Case Width")
		}
		if m.CaseDepth == -1 {
			missing = append(missing, "Case Depth")
		}
	}
	return missing
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseLength parses a single whole-number dimension, allowing an "mm" suffix.
func parseLength(s string) (uint32, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(s), "mm"))
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

// parseSize reads a size either from a combined cell or from two separate columns.
func parseSize(row []string, combined, width, depth int, what, rowLabel string) (model.Vec2, string) {
	if combined >= 0 {
		cell := getCell(row, combined)
		if cell == "" {
			return model.Vec2{}, fmt.Sprintf("%s: Missing %s size", rowLabel, what)
		}
		v, err := model.ParseVec2(cell)
		if err != nil {
			return model.Vec2{}, fmt.Sprintf("%s: Invalid %s size '%s'", rowLabel, what, cell)
		}
		return v, ""
	}

	wStr, dStr := getCell(row, width), getCell(row, depth)
	if wStr == "" || dStr == "" {
		return model.Vec2{}, fmt.Sprintf("%s: Missing %s width or depth", rowLabel, what)
	}
	w, err := parseLength(wStr)
	if err != nil {
		return model.Vec2{}, fmt.Sprintf("%s: Invalid %s width '%s'", rowLabel, what, wStr)
	}
	d, err := parseLength(dStr)
	if err != nil {
		return model.Vec2{}, fmt.Sprintf("%s: Invalid %s depth '%s'", rowLabel, what, dStr)
	}
	return model.V(w, d), ""
}

// parseRow extracts a Job from a row using the given column mapping.
// Returns the job, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, jobCount int) (model.Job, string, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Job %d", jobCount+1)
	}

	pallet, errMsg := parseSize(row, mapping.Pallet, mapping.PalletWidth, mapping.PalletDepth, "pallet", rowLabel)
	if errMsg != "" {
		return model.Job{}, errMsg, ""
	}
	item, errMsg := parseSize(row, mapping.Case, mapping.CaseWidth, mapping.CaseDepth, "case", rowLabel)
	if errMsg != "" {
		return model.Job{}, errMsg, ""
	}
	if pallet.IsZero() || item.IsZero() {
		return model.Job{}, fmt.Sprintf("%s: Pallet and case sizes must be positive", rowLabel), ""
	}

	job := model.NewJob(label, pallet, item)

	// Optional per-job strategy
	var warning string
	if algStr := getCell(row, mapping.Algorithm); algStr != "" {
		alg, err := model.ParseAlgorithm(algStr)
		if err == nil {
			job.Algorithm = alg
		} else {
			warning = fmt.Sprintf("%s: Unknown algorithm '%s', using the default", rowLabel, algStr)
		}
	}

	return job, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports jobs from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports jobs from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ImportExcel imports jobs from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportFile dispatches on the file extension.
func ImportFile(path string) ImportResult {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return ImportExcel(path)
	}
	return ImportCSV(path)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		if missing := mapping.missingColumns(); len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognized header still gets skipped; data rows fall back to positions.
		if _, err := parseLength(rows[0][1]); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		job, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Jobs))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Jobs = append(result.Jobs, job)
	}

	return result
}
