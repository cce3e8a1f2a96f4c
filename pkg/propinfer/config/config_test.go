package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadDomains(t *testing.T) {
	path := writeTemp(t, "domains.yaml", "domains:\n  - Person\n  - Organization\n")

	spec, err := LoadDomains(path)
	if err != nil {
		t.Fatalf("LoadDomains: %v", err)
	}
	if !spec.Contains("Person") {
		t.Error("expected Person to be a valid domain")
	}
	if spec.Contains("Vehicle") {
		t.Error("did not expect Vehicle to be a valid domain")
	}
}

func TestLoadDomainsMissingFile(t *testing.T) {
	if _, err := LoadDomains(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadWeights(t *testing.T) {
	path := writeTemp(t, "weights.yaml", "class_0:\n  feat_a: -0.5\nclass_1:\n  feat_a: 1.5\n")

	wf, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if wf.ForClass(1)["feat_a"] != 1.5 {
		t.Errorf("expected class_1 feat_a = 1.5, got %v", wf.ForClass(1)["feat_a"])
	}
	if wf.ForClass(0)["feat_a"] != -0.5 {
		t.Errorf("expected class_0 feat_a = -0.5, got %v", wf.ForClass(0)["feat_a"])
	}
}

func TestLoadWeightsEmpty(t *testing.T) {
	path := writeTemp(t, "empty.yaml", "")
	wf, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if len(wf.ForClass(0)) != 0 || len(wf.ForClass(1)) != 0 {
		t.Error("expected empty weight maps for empty file")
	}
}
