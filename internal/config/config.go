package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/blopez6567/Clashsense/internal/analysis"
	"github.com/blopez6567/Clashsense/internal/classification"
	"github.com/blopez6567/Clashsense/internal/common"
	"github.com/blopez6567/Clashsense/internal/model"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// CLASHSENSE_SERVER_ADDR for server.addr.
const EnvPrefix = "CLASHSENSE"

// Config holds the application settings.
type Config struct {
	Classifier ClassifierConfig
	Analysis   AnalysisConfig
	Server     ServerConfig
}

// ClassifierConfig controls discipline, severity and group assignment.
type ClassifierConfig struct {
	DefaultDiscipline string
	DefaultSeverity   string
	RulesFile         string
}

// AnalysisConfig controls the AI analysis client.
type AnalysisConfig struct {
	Provider   string
	Model      string
	APIKey     string
	MaxClashes int
	MaxTokens  int
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("classifier.default_discipline", string(model.DisciplineMechanical))
	v.SetDefault("classifier.default_severity", string(model.SeverityMedium))
	v.SetDefault("classifier.rules_file", "")
	v.SetDefault("analysis.provider", "anthropic")
	v.SetDefault("analysis.model", analysis.DefaultModel)
	v.SetDefault("analysis.api_key", "")
	v.SetDefault("analysis.max_clashes", analysis.DefaultMaxClashes)
	v.SetDefault("analysis.max_tokens", 500)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
}

// BindEnv enables CLASHSENSE_* environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from v, applying defaults for unset keys.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Classifier: ClassifierConfig{
			DefaultDiscipline: strings.ToUpper(strings.TrimSpace(v.GetString("classifier.default_discipline"))),
			DefaultSeverity:   strings.ToLower(strings.TrimSpace(v.GetString("classifier.default_severity"))),
			RulesFile:         ExpandPath(v.GetString("classifier.rules_file")),
		},
		Analysis: AnalysisConfig{
			Provider:   strings.ToLower(v.GetString("analysis.provider")),
			Model:      v.GetString("analysis.model"),
			APIKey:     v.GetString("analysis.api_key"),
			MaxClashes: v.GetInt("analysis.max_clashes"),
			MaxTokens:  v.GetInt("analysis.max_tokens"),
		},
		Server: ServerConfig{
			Addr:           v.GetString("server.addr"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
	}
	if cfg.Analysis.APIKey == "" {
		cfg.Analysis.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if cfg.Analysis.Provider != "anthropic" {
		return nil, fmt.Errorf("%w: unsupported analysis provider %q", common.ErrInvalidConfig, cfg.Analysis.Provider)
	}
	if cfg.Analysis.MaxClashes < 0 {
		return nil, fmt.Errorf("%w: analysis.max_clashes must not be negative", common.ErrInvalidConfig)
	}
	return cfg, nil
}

// ClassifierPolicy builds the classification policy: built-in tables, then
// the configured defaults, then the rules file if one is set.
func (c *Config) ClassifierPolicy() (classification.Policy, error) {
	policy := classification.DefaultPolicy()
	if c.Classifier.DefaultDiscipline != "" {
		policy.DefaultDiscipline = model.Discipline(c.Classifier.DefaultDiscipline)
	}
	if c.Classifier.DefaultSeverity != "" {
		policy.DefaultSeverity = model.Severity(c.Classifier.DefaultSeverity)
	}

	if c.Classifier.RulesFile != "" {
		return classification.LoadRulesFile(c.Classifier.RulesFile, policy)
	}
	if err := policy.Validate(); err != nil {
		return classification.Policy{}, err
	}
	return policy, nil
}

// AnalysisClient returns a client for the configured provider, or
// common.ErrNoAnalyzer when no API key is available.
func (c *Config) AnalysisClient() (*analysis.Client, error) {
	if c.Analysis.APIKey == "" {
		return nil, common.ErrNoAnalyzer
	}
	return analysis.NewClient(analysis.Config{
		APIKey:    c.Analysis.APIKey,
		Model:     c.Analysis.Model,
		MaxTokens: c.Analysis.MaxTokens,
	})
}
