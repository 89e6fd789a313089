package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Auth        AuthConfig        `toml:"auth"`
	LLM         LLMConfig         `toml:"llm"`
	Interview   InterviewConfig   `toml:"interview"`
	Sufficiency SufficiencyConfig `toml:"sufficiency"`
	Instance    InstanceConfig    `toml:"instance"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	JWTSecret      string `toml:"jwt_secret"`
	TokenExpiryMin int    `toml:"token_expiry_min"`
}

type LLMConfig struct {
	OpenAIAPIKey     string `toml:"openai_api_key"`
	OpenAIBaseURL    string `toml:"openai_base_url"`
	AnthropicAPIKey  string `toml:"anthropic_api_key"`
	AnthropicBaseURL string `toml:"anthropic_base_url"`
	ScoringModel     string `toml:"scoring_model"`
	FollowupModel    string `toml:"followup_model"`
	BiographyModel   string `toml:"biography_model"`
	TimeoutSec       int    `toml:"timeout_sec"`
}

// InterviewConfig holds the progression budgets and evaluator cache size.
type InterviewConfig struct {
	MaxQuestionsPerTheme int `toml:"max_questions_per_theme"`
	MaxQuestionsPerStory int `toml:"max_questions_per_story"`
	ScoreCacheSize       int `toml:"score_cache_size"`
}

// SufficiencyConfig holds the "enough material" thresholds. The interview
// thresholds short-circuit question generation; the synthesis thresholds gate
// biography generation and may be configured independently.
type SufficiencyConfig struct {
	MinAnswers             int `toml:"min_answers"`
	MinTotalChars          int `toml:"min_total_chars"`
	SynthesisMinAnswers    int `toml:"synthesis_min_answers"`
	SynthesisMinTotalChars int `toml:"synthesis_min_total_chars"`
}

type InstanceConfig struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			Path: "data/lifeweave.db",
		},
		Auth: AuthConfig{
			JWTSecret:      "change-me-in-production",
			TokenExpiryMin: 1440, // 24h
		},
		LLM: LLMConfig{
			OpenAIBaseURL:  "https://api.openai.com/v1",
			ScoringModel:   "gpt-4o",
			FollowupModel:  "gpt-4o",
			BiographyModel: "gpt-4o",
			TimeoutSec:     30,
		},
		Interview: InterviewConfig{
			MaxQuestionsPerTheme: 18,
			MaxQuestionsPerStory: 6,
			ScoreCacheSize:       64,
		},
		Sufficiency: SufficiencyConfig{
			MinAnswers:             10,
			MinTotalChars:          200,
			SynthesisMinAnswers:    10,
			SynthesisMinTotalChars: 200,
		},
		Instance: InstanceConfig{
			ID:   "local",
			Name: "lifeweave-local",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
