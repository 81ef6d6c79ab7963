package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRowTableCSVRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.csv")
	content := "X,Y,Name\n1,2,a\n3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	rows, err := LoadRowTable(path)
	if err != nil {
		t.Fatalf("LoadRowTable error: %v", err)
	}
	if rows.Len() != 2 {
		t.Fatalf("rows.Len() = %d, want 2", rows.Len())
	}

	v, ok := rows.Get(0, "Name")
	if !ok || v.Text() != "a" {
		t.Errorf("row 0 Name = %v, ok=%v", v, ok)
	}
	if _, ok := rows.Get(1, "Y"); ok {
		t.Error("expected ragged row 1 to lack column Y")
	}
}

func TestLoadRowTableJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.json")
	content := `[{"X": 1, "Y": 2.5}, {"X": 3, "Y": 4.5}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	rows, err := LoadRowTable(path)
	if err != nil {
		t.Fatalf("LoadRowTable error: %v", err)
	}
	if rows.Len() != 2 {
		t.Fatalf("rows.Len() = %d, want 2", rows.Len())
	}
	v, _ := rows.Get(0, "X")
	if v.Int() != 1 {
		t.Errorf("row 0 X = %v, want 1", v)
	}
}

func TestWriteRowTableCSVUnionSortedBlank(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	rows, err := LoadRowTable(writeTempCSV(t, dir, "X,Y\n1,2\n3\n"))
	if err != nil {
		t.Fatalf("LoadRowTable error: %v", err)
	}
	rows.Set(1, "Z", rows.Row(0)["X"]) // row 1 lacks Y (ragged) but gets a Z

	if err := WriteRowTable(path, rows); err != nil {
		t.Fatalf("WriteRowTable error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "X,Y,Z" {
		t.Errorf("header = %q, want sorted union X,Y,Z", lines[0])
	}
}

func writeTempCSV(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return path
}

func TestWriteRowTableJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	rows, err := LoadRowTable(writeTempCSV(t, dir, "X\n7\n"))
	if err != nil {
		t.Fatalf("LoadRowTable error: %v", err)
	}
	if err := WriteRowTable(path, rows); err != nil {
		t.Fatalf("WriteRowTable error: %v", err)
	}

	reloaded, err := LoadRowTable(path)
	if err != nil {
		t.Fatalf("reloading written JSON: %v", err)
	}
	v, ok := reloaded.Get(0, "X")
	if !ok || v.Int() != 7 {
		t.Errorf("round-tripped X = %v, ok=%v, want 7", v, ok)
	}
}
