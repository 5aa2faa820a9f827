package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	AI     AI     `mapstructure:"ai"`
	Search Search `mapstructure:"search"`
	Images Images `mapstructure:"images"`
}

// AI holds LLM provider configuration.
type AI struct {
	Mode      string          `mapstructure:"mode"` // sync, batch or auto
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
}

// AnthropicConfig holds Claude configuration.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// GeminiConfig holds Gemini configuration.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// OpenAIConfig holds OpenAI configuration (image generation).
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Search holds search API configuration.
type Search struct {
	TavilyAPIKey   string  `mapstructure:"tavily_api_key"`
	MaxResults     int     `mapstructure:"max_results"`
	TimeRange      string  `mapstructure:"time_range"`
	ScoreThreshold float64 `mapstructure:"score_threshold"`
	SubQueries     bool    `mapstructure:"sub_queries"`
}

// Images holds image generation configuration.
type Images struct {
	MaxSectionImages int    `mapstructure:"max_section_images"`
	Size             string `mapstructure:"size"`
}

// Load reads configuration from .env, environment variables (AUTOWP_
// prefix, dots as underscores) and an optional config.yaml in the
// working directory.
func Load() (*Config, error) {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("AUTOWP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.mode", "auto")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.time_range", "week")
	v.SetDefault("search.score_threshold", 0.6)
	v.SetDefault("search.sub_queries", true)
	v.SetDefault("images.max_section_images", 5)
	v.SetDefault("images.size", "1536x1024")
}

// bindLegacyEnv maps the conventional provider variable names onto the
// config tree, so ANTHROPIC_API_KEY etc. work without the AUTOWP_ prefix.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("ai.anthropic.api_key", "AUTOWP_AI_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("ai.gemini.api_key", "AUTOWP_AI_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("ai.openai.api_key", "AUTOWP_AI_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("search.tavily_api_key", "AUTOWP_SEARCH_TAVILY_API_KEY", "TAVILY_API_KEY")
}
