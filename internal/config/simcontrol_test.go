package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSimControlTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.toml")
	content := `
input_data_file_path = "rows.csv"
num_steps = 100
capture_step_period = 5

[data_constants]
K = "2"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	sc, err := LoadSimControl(path)
	if err != nil {
		t.Fatalf("LoadSimControl error: %v", err)
	}
	if sc.InputDataFilePath != "rows.csv" {
		t.Errorf("InputDataFilePath = %q, want rows.csv", sc.InputDataFilePath)
	}
	if sc.NumSteps != 100 {
		t.Errorf("NumSteps = %d, want 100", sc.NumSteps)
	}
	if sc.CaptureStepPeriod != 5 {
		t.Errorf("CaptureStepPeriod = %d, want 5", sc.CaptureStepPeriod)
	}

	constants := sc.ResolvedDataConstants()
	if constants["K"].Int() != 2 {
		t.Errorf("data_constants.K = %v, want 2", constants["K"])
	}
}

func TestLoadSimControlJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.json")
	content := `{"num_steps": 42, "gis_x_attr_name": "PosX"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	sc, err := LoadSimControl(path)
	if err != nil {
		t.Fatalf("LoadSimControl error: %v", err)
	}
	if sc.NumSteps != 42 {
		t.Errorf("NumSteps = %d, want 42", sc.NumSteps)
	}
	if sc.GISXAttrName != "PosX" {
		t.Errorf("GISXAttrName = %q, want PosX", sc.GISXAttrName)
	}
}

func TestDefaultSimControl(t *testing.T) {
	sc := DefaultSimControl()
	if sc.NumSteps != 64 || sc.CaptureStepPeriod != 10 || sc.GISXAttrName != "X" || sc.GISYAttrName != "Y" {
		t.Errorf("unexpected defaults: %+v", sc)
	}
}

func TestMergeCLIOverridesWin(t *testing.T) {
	base := DefaultSimControl()
	base.NumSteps = 64
	base.PreferredGPUName = "cpu0"

	overrides := SimControl{NumSteps: 10}
	merged := base.MergeCLI(overrides)

	if merged.NumSteps != 10 {
		t.Errorf("NumSteps = %d, want CLI override 10", merged.NumSteps)
	}
	if merged.PreferredGPUName != "cpu0" {
		t.Errorf("PreferredGPUName = %q, want base value preserved", merged.PreferredGPUName)
	}
}
