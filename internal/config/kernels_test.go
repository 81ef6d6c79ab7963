package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKernelDocumentsTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernels.toml")
	content := `
[[kernels]]
name = "increment"
source = "increment"
cl_program_compiler_options = "-DFOO=1"
data_constants = [["K", "i32", "9"]]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	docs, err := LoadKernelDocuments(path)
	if err != nil {
		t.Fatalf("LoadKernelDocuments error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 kernel document, got %d", len(docs))
	}
	doc := docs[0]
	if doc.Name != "increment" || doc.Source != "increment" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.ClProgramCompilerOptions != "-DFOO=1" {
		t.Errorf("ClProgramCompilerOptions = %q, want -DFOO=1", doc.ClProgramCompilerOptions)
	}

	constants, err := doc.ResolvedDataConstants()
	if err != nil {
		t.Fatalf("ResolvedDataConstants error: %v", err)
	}
	if constants["K"].Int() != 9 {
		t.Errorf("K = %v, want 9", constants["K"])
	}
}

func TestResolvedDataConstantsTruncatesToElementType(t *testing.T) {
	doc := KernelDocument{
		Name: "k",
		DataConstants: []ConstantTriple{
			{Name: "K", Type: "i32", Value: "3.9"},
		},
	}
	constants, err := doc.ResolvedDataConstants()
	if err != nil {
		t.Fatalf("ResolvedDataConstants error: %v", err)
	}
	if constants["K"].Int() != 3 {
		t.Errorf("expected truncation to 3, got %v", constants["K"])
	}
}

func TestLoadKernelDocumentsJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernels.json")
	content := `{"kernels": [{"name": "k", "source": "src", "data_constants": [["K", "f64", "1.5"]]}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	docs, err := LoadKernelDocuments(path)
	if err != nil {
		t.Fatalf("LoadKernelDocuments error: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "k" {
		t.Fatalf("unexpected documents: %+v", docs)
	}
	constants, err := docs[0].ResolvedDataConstants()
	if err != nil {
		t.Fatalf("ResolvedDataConstants error: %v", err)
	}
	if constants["K"].Float() != 1.5 {
		t.Errorf("K = %v, want 1.5", constants["K"])
	}
}
