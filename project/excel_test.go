package project

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ByLCY/plakat/config"
)

func writeWorkbook(t *testing.T, dir string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	path := filepath.Join(dir, "project_info.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestReadAll(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, [][]any{
		{"project_id", "project_name", "problem", "solution", "product", "team", "image_filename"},
		{"P1", "Умный кампус", "Проблема 1", "Решение 1", "Продукт 1", "Иван, Мария", "p1.png"},
		{"", "", "", "", "", "", ""}, // 空行应被跳过
		{"P2", "Эко-трекер", "Проблема 2", "Решение 2", "Продукт 2", "Олег", ""},
	})

	reader := NewReader(path, config.Default().Columns)
	projects, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[0].ProjectID != "P1" || projects[0].ImageFilename != "p1.png" {
		t.Fatalf("first project mismatch: %+v", projects[0])
	}
	if projects[1].Row != 4 {
		t.Fatalf("row numbering lost: got %d", projects[1].Row)
	}
}

func TestReadAllHeaderCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, [][]any{
		{"Project_ID", "PROJECT_NAME", "Problem", "Solution", "Product", "Team"},
		{"P1", "Имя", "a", "b", "c", "d"},
	})

	reader := NewReader(path, config.Default().Columns)
	projects, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(projects) != 1 || projects[0].ProjectName != "Имя" {
		t.Fatalf("unexpected projects: %+v", projects)
	}
}

func TestReadAllMissingRequiredColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, [][]any{
		{"project_id", "project_name", "problem", "solution", "product"}, // 缺 team
		{"P1", "Имя", "a", "b", "c"},
	})

	reader := NewReader(path, config.Default().Columns)
	if _, err := reader.ReadAll(); err == nil {
		t.Fatalf("expected error for missing required column")
	}
}

func TestReadAllMissingFile(t *testing.T) {
	reader := NewReader(filepath.Join(t.TempDir(), "nope.xlsx"), config.Default().Columns)
	if _, err := reader.ReadAll(); err == nil {
		t.Fatalf("expected error for missing workbook")
	}
}

func TestValidateReportsMissingFields(t *testing.T) {
	d := Data{ProjectID: "P1", ProjectName: "Имя"}
	problems := d.Validate()
	if len(problems) != 4 {
		t.Fatalf("expected 4 missing fields, got %v", problems)
	}
	if complete := (Data{
		ProjectID: "P1", ProjectName: "n", Problem: "p",
		Solution: "s", Product: "pr", Team: "t",
	}).Validate(); len(complete) != 0 {
		t.Fatalf("complete record must validate clean, got %v", complete)
	}
}
