package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MonomorphizationDepth != 128 {
		t.Errorf("MonomorphizationDepth = %d, want 128", cfg.MonomorphizationDepth)
	}
	if !cfg.NicheOptimization {
		t.Errorf("NicheOptimization = false, want true")
	}
	if cfg.WidenWarnThresholdBytes != 256 {
		t.Errorf("WidenWarnThresholdBytes = %d, want 256", cfg.WidenWarnThresholdBytes)
	}
	if len(cfg.Allow) != 0 {
		t.Errorf("Allow = %v, want empty", cfg.Allow)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "cursive0.yaml")

	content := `monomorphization_depth: 64
niche_optimization: false
allow: ["E-UNUSED"]
widen_warn_threshold_bytes: 512
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MonomorphizationDepth != 64 {
		t.Errorf("MonomorphizationDepth = %d, want 64", cfg.MonomorphizationDepth)
	}
	if cfg.NicheOptimization {
		t.Errorf("NicheOptimization = true, want false")
	}
	if cfg.WidenWarnThresholdBytes != 512 {
		t.Errorf("WidenWarnThresholdBytes = %d, want 512", cfg.WidenWarnThresholdBytes)
	}
	if len(cfg.Allow) != 1 || cfg.Allow[0] != "E-UNUSED" {
		t.Errorf("Allow = %v, want [E-UNUSED]", cfg.Allow)
	}
}

func TestLoad_PartialFallsBackToDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "cursive0.yaml")

	if err := os.WriteFile(path, []byte("niche_optimization: false\n"), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MonomorphizationDepth != 128 {
		t.Errorf("MonomorphizationDepth = %d, want fallback 128", cfg.MonomorphizationDepth)
	}
	if cfg.WidenWarnThresholdBytes != 256 {
		t.Errorf("WidenWarnThresholdBytes = %d, want fallback 256", cfg.WidenWarnThresholdBytes)
	}
	if cfg.NicheOptimization {
		t.Errorf("NicheOptimization = true, want false (explicit in file)")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
