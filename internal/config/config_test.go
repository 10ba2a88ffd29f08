package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.DiffEditCost != def.DiffEditCost {
		t.Fatalf("DiffEditCost = %d, want %d", cfg.DiffEditCost, def.DiffEditCost)
	}
	if cfg.DiffTimeoutSeconds != 5 {
		t.Fatalf("DiffTimeoutSeconds = %v, want 5", cfg.DiffTimeoutSeconds)
	}
	if cfg.DiffMode != "efficiency" {
		t.Fatalf("DiffMode = %q, want efficiency", cfg.DiffMode)
	}
	if cfg.HashAlgorithm != "md5" {
		t.Fatalf("HashAlgorithm = %q, want md5", cfg.HashAlgorithm)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	data := `{"diff_edit_cost": 8, "diff_mode": "semantic", "hash_algorithm": "blake3"}`
	if err := os.WriteFile(configPath, []byte(data), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DiffEditCost != 8 {
		t.Fatalf("DiffEditCost = %d, want 8", cfg.DiffEditCost)
	}
	if cfg.DiffMode != "semantic" {
		t.Fatalf("DiffMode = %q, want semantic", cfg.DiffMode)
	}
	if cfg.HashAlgorithm != "blake3" {
		t.Fatalf("HashAlgorithm = %q, want blake3", cfg.HashAlgorithm)
	}
	// untouched default survives
	if cfg.DiffTimeoutSeconds != 5 {
		t.Fatalf("DiffTimeoutSeconds = %v, want 5", cfg.DiffTimeoutSeconds)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["spec_clean", "spec_rekey"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "spec_clean" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "spec_clean")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	globalConfig := `{"diff_edit_cost": 6, "disabled_tools": ["spec_clean"], "legacy_converter": ["antiword", "{src}"]}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	repoDir := filepath.Join(repoRoot, ".specdiff")
	if err := os.MkdirAll(repoDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	repoConfig := `{"diff_edit_cost": 10, "disabled_tools": ["spec_rekey"]}`
	if err := os.WriteFile(filepath.Join(repoDir, "config.json"), []byte(repoConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	nested := filepath.Join(repoRoot, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.DiffEditCost != 10 {
		t.Errorf("DiffEditCost = %d, want 10 (repo override)", cfg.DiffEditCost)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want merged list of 2", cfg.DisabledTools)
	}
	if len(cfg.LegacyConverter) != 2 || cfg.LegacyConverter[0] != "antiword" {
		t.Errorf("LegacyConverter = %v, want global argv", cfg.LegacyConverter)
	}
}

func TestLoadWithRepo_NoRepoConfig(t *testing.T) {
	globalDir := t.TempDir()
	startDir := t.TempDir()

	cfg, err := LoadWithRepo(globalDir, startDir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.DiffEditCost != 4 {
		t.Errorf("DiffEditCost = %d, want 4", cfg.DiffEditCost)
	}
}

func TestMerge_LegacyConverterReplaced(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{LegacyConverter: []string{"catdoc", "{src}"}}

	got := Merge(base, overlay)
	if len(got.LegacyConverter) != 2 || got.LegacyConverter[0] != "catdoc" {
		t.Errorf("LegacyConverter = %v, want overlay argv", got.LegacyConverter)
	}
}

func TestResolveDirs(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "home", "u", ".specdiff")

	cfg := DefaultConfig()
	if got := cfg.ResolveContentDir(base); got != filepath.Join(base, "contents") {
		t.Errorf("ResolveContentDir() = %q", got)
	}
	if got := cfg.ResolveOutputDir(base); got != filepath.Join(base, "tmp") {
		t.Errorf("ResolveOutputDir() = %q", got)
	}

	cfg.ContentDir = "blobs"
	if got := cfg.ResolveContentDir(base); got != filepath.Join(base, "blobs") {
		t.Errorf("ResolveContentDir() relative = %q", got)
	}

	abs := filepath.Join(string(filepath.Separator), "srv", "contents")
	cfg.ContentDir = abs
	if got := cfg.ResolveContentDir(base); got != abs {
		t.Errorf("ResolveContentDir() absolute = %q", got)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if got := FindRepoConfig(t.TempDir()); got != "" {
		t.Errorf("FindRepoConfig() = %q, want empty", got)
	}
}
