package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docagent.yaml")
	content := `model: gpt-4o-mini
max_rounds: 5
tool_replies_support_media: true
outline_caption_page: 23
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want gpt-4o-mini", cfg.Model)
	}
	if cfg.MaxRounds != 5 {
		t.Errorf("MaxRounds = %d, want 5", cfg.MaxRounds)
	}
	if !cfg.ToolReplyMedia {
		t.Error("ToolReplyMedia = false, want true")
	}
	if cfg.OutlineCaptionPage != 23 {
		t.Errorf("OutlineCaptionPage = %d, want 23", cfg.OutlineCaptionPage)
	}

	// Unset keys fall back to defaults.
	def := Default()
	if cfg.MaxTokens != def.MaxTokens {
		t.Errorf("MaxTokens = %d, want default %d", cfg.MaxTokens, def.MaxTokens)
	}
	if cfg.MaxSectionDepth != def.MaxSectionDepth {
		t.Errorf("MaxSectionDepth = %d, want default %d", cfg.MaxSectionDepth, def.MaxSectionDepth)
	}
	if cfg.MaxSearchResults != def.MaxSearchResults {
		t.Errorf("MaxSearchResults = %d, want default %d", cfg.MaxSearchResults, def.MaxSearchResults)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docagent.yaml")
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
