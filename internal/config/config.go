// Package config loads docagent settings from an optional YAML file,
// applying defaults for anything unset.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the document model and the agent loop.
type Config struct {
	// Chat-completion endpoint
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// Orchestration loop
	MaxRounds        int  `yaml:"max_rounds"`
	MaxToolsPerRound int  `yaml:"max_tools_per_round"`
	ToolWaitSecs     int  `yaml:"tool_wait_secs"`
	ToolReplyMedia   bool `yaml:"tool_replies_support_media"` // keep reply text on the tool message; images always ride a user message

	// Document tree and outline
	MaxSectionDepth    int `yaml:"max_section_depth"`
	OutlineSkipPage    int `yaml:"outline_skip_page"`
	OutlineCaptionPage int `yaml:"outline_caption_page"` // 0 keeps captions intact

	// Tool reply caps
	MaxSearchResults int `yaml:"max_search_results"`
	MaxPageImages    int `yaml:"max_page_images"`
	MaxSectionChars  int `yaml:"max_section_chars"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Model:            "gpt-4o",
		Temperature:      0,
		MaxTokens:        8192,
		MaxRounds:        10,
		MaxToolsPerRound: 10,
		ToolWaitSecs:     10,
		MaxSectionDepth:  10,
		OutlineSkipPage:  100,
		MaxSearchResults: 24,
		MaxPageImages:    20,
		MaxSectionChars:  30000,
	}
}

// Load reads a config file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = def.MaxRounds
	}
	if cfg.MaxToolsPerRound == 0 {
		cfg.MaxToolsPerRound = def.MaxToolsPerRound
	}
	if cfg.MaxSectionDepth == 0 {
		cfg.MaxSectionDepth = def.MaxSectionDepth
	}
	if cfg.OutlineSkipPage == 0 {
		cfg.OutlineSkipPage = def.OutlineSkipPage
	}
	if cfg.MaxSearchResults == 0 {
		cfg.MaxSearchResults = def.MaxSearchResults
	}
	if cfg.MaxPageImages == 0 {
		cfg.MaxPageImages = def.MaxPageImages
	}
	if cfg.MaxSectionChars == 0 {
		cfg.MaxSectionChars = def.MaxSectionChars
	}
}
