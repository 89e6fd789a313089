package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Server.Addr != ":8080" {
			t.Errorf("addr = %q, want :8080", cfg.Server.Addr)
		}
		if cfg.Interview.MaxQuestionsPerTheme != 18 {
			t.Errorf("max per theme = %d, want 18", cfg.Interview.MaxQuestionsPerTheme)
		}
		if cfg.Interview.MaxQuestionsPerStory != 6 {
			t.Errorf("max per story = %d, want 6", cfg.Interview.MaxQuestionsPerStory)
		}
		if cfg.Sufficiency.MinAnswers != 10 || cfg.Sufficiency.MinTotalChars != 200 {
			t.Errorf("sufficiency = %d/%d, want 10/200",
				cfg.Sufficiency.MinAnswers, cfg.Sufficiency.MinTotalChars)
		}
	})

	t.Run("MissingFileUsesDefaults", func(t *testing.T) {
		cfg, err := Load("/nonexistent/config.toml")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Auth.TokenExpiryMin != 1440 {
			t.Errorf("token expiry = %d, want 1440", cfg.Auth.TokenExpiryMin)
		}
	})

	t.Run("FileOverridesDefaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		body := `
[server]
addr = ":9191"

[interview]
max_questions_per_story = 4
score_cache_size = 128

[sufficiency]
min_answers = 5
`
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("writing config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Server.Addr != ":9191" {
			t.Errorf("addr = %q, want :9191", cfg.Server.Addr)
		}
		if cfg.Interview.MaxQuestionsPerStory != 4 {
			t.Errorf("max per story = %d, want 4", cfg.Interview.MaxQuestionsPerStory)
		}
		if cfg.Interview.ScoreCacheSize != 128 {
			t.Errorf("cache size = %d, want 128", cfg.Interview.ScoreCacheSize)
		}
		if cfg.Sufficiency.MinAnswers != 5 {
			t.Errorf("min answers = %d, want 5", cfg.Sufficiency.MinAnswers)
		}
		// Untouched sections keep defaults
		if cfg.Interview.MaxQuestionsPerTheme != 18 {
			t.Errorf("max per theme = %d, want 18", cfg.Interview.MaxQuestionsPerTheme)
		}
	})

	t.Run("MalformedFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
			t.Fatalf("writing config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected error for malformed config")
		}
	})
}
