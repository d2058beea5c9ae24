package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingExplicitPathFails(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing explicit path, got config %+v", cfg)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
page:
  width_mm: 420
  height_mm: 594
fonts:
  title_size: 36
  min_font_size: 8
output:
  naming_pattern: "{project_id}"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Page.WidthMM != 420 || cfg.Page.HeightMM != 594 {
		t.Fatalf("page override lost: %+v", cfg.Page)
	}
	if cfg.Fonts.TitleSize != 36 || cfg.Fonts.MinFontSize != 8 {
		t.Fatalf("font override lost: %+v", cfg.Fonts)
	}
	// 未覆盖的字段保持默认
	if cfg.Fonts.BodyFont != "DejaVuSans" {
		t.Fatalf("default body font lost: %q", cfg.Fonts.BodyFont)
	}
	if cfg.Labels.Team != "Команда" {
		t.Fatalf("default labels lost: %q", cfg.Labels.Team)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := []byte(`{"output": {"output_folder": "posters"}}`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Output.Folder != "posters" {
		t.Fatalf("json override lost: %q", cfg.Output.Folder)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PLAKAT_OUTPUT_DIR", "/tmp/out")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Output.Folder != "/tmp/out" {
		t.Fatalf("env override lost: %q", cfg.Output.Folder)
	}
}

func TestValidateRejectsBrokenSizeRange(t *testing.T) {
	cfg := Default()
	cfg.Fonts.MinFontSize = 30 // 大于 body_size，排版请求会非法

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsBadFitMode(t *testing.T) {
	cfg := Default()
	cfg.Layout.ImageFitMode = "stretch"

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsZeroLineSpacing(t *testing.T) {
	cfg := Default()
	cfg.Fonts.LineSpacing = 0

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
