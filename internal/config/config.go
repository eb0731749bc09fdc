package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ddxy18/git-hooks/internal/schema"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the git-hooks configuration
type Config struct {
	Format      string        `mapstructure:"format" yaml:"format"`
	Output      string        `mapstructure:"output" yaml:"output,omitempty"`
	Quiet       bool          `mapstructure:"quiet" yaml:"quiet"`
	Verbose     bool          `mapstructure:"verbose" yaml:"verbose"`
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
	Staged      bool          `mapstructure:"staged" yaml:"staged"`
	Extensions  []string      `mapstructure:"extensions" yaml:"extensions"`
	Exclude     []string      `mapstructure:"exclude" yaml:"exclude,omitempty"`

	ClangFormat   ClangFormatConfig   `mapstructure:"clangFormat" yaml:"clangFormat"`
	ClangTidy     ClangTidyConfig     `mapstructure:"clangTidy" yaml:"clangTidy"`
	CommitMessage CommitMessageConfig `mapstructure:"commitMessage" yaml:"commitMessage"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// ClangFormatConfig configures the format check
type ClangFormatConfig struct {
	Tool    string `mapstructure:"tool" yaml:"tool"`
	Version string `mapstructure:"version" yaml:"version,omitempty"`
	Style   string `mapstructure:"style" yaml:"style"`
	Diff    string `mapstructure:"diff" yaml:"diff"`
	Unified bool   `mapstructure:"unified" yaml:"unified"`
}

// ClangTidyConfig configures the lint check
type ClangTidyConfig struct {
	Tool      string   `mapstructure:"tool" yaml:"tool"`
	Version   string   `mapstructure:"version" yaml:"version,omitempty"`
	Build     string   `mapstructure:"build" yaml:"build,omitempty"`
	Checks    string   `mapstructure:"checks" yaml:"checks,omitempty"`
	ExtraArgs []string `mapstructure:"extraArgs" yaml:"extraArgs,omitempty"`
}

// CommitMessageConfig configures the commit message grammar
type CommitMessageConfig struct {
	Types         []string `mapstructure:"types" yaml:"types"`
	MaxLineLength int      `mapstructure:"maxLineLength" yaml:"maxLineLength"`
}

// Formats lists the accepted report formats.
var Formats = []string{"console", "json", "yaml", "markdown"}

// configFiles are searched in the working directory, in order.
var configFiles = []string{".githooksrc.yaml", ".githooksrc.yml", ".githooksrc.json"}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		Format:     "console",
		Extensions: []string{".cc", ".h"},
		ClangFormat: ClangFormatConfig{
			Tool:  "clang-format",
			Style: "file",
			Diff:  "diff",
		},
		ClangTidy: ClangTidyConfig{
			Tool: "clang-tidy",
		},
		CommitMessage: CommitMessageConfig{
			Types:         []string{"feat", "fix", "docs", "style", "refactor", "test", "chore"},
			MaxLineLength: 100,
		},
	}
}

func setDefaults() {
	d := Defaults()
	viper.SetDefault("format", d.Format)
	viper.SetDefault("output", "")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("concurrency", 0)
	viper.SetDefault("timeout", "0s")
	viper.SetDefault("staged", false)
	viper.SetDefault("extensions", d.Extensions)
	viper.SetDefault("exclude", []string{})
	viper.SetDefault("clangFormat.tool", d.ClangFormat.Tool)
	viper.SetDefault("clangFormat.version", "")
	viper.SetDefault("clangFormat.style", d.ClangFormat.Style)
	viper.SetDefault("clangFormat.diff", d.ClangFormat.Diff)
	viper.SetDefault("clangFormat.unified", false)
	viper.SetDefault("clangTidy.tool", d.ClangTidy.Tool)
	viper.SetDefault("clangTidy.version", "")
	viper.SetDefault("clangTidy.build", "")
	viper.SetDefault("clangTidy.checks", "")
	viper.SetDefault("clangTidy.extraArgs", []string{})
	viper.SetDefault("commitMessage.types", d.CommitMessage.Types)
	viper.SetDefault("commitMessage.maxLineLength", d.CommitMessage.MaxLineLength)
}

// LoadConfig loads configuration from defaults, the config file, the
// environment and any flags already bound to viper. An explicit configPath
// must exist; otherwise the first .githooksrc file found in the working
// directory is used.
func LoadConfig(configPath string) (*Config, error) {
	setDefaults()

	used, err := readConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	if used != "" {
		violations, err := schema.ValidateFile(used)
		if err != nil {
			return nil, fmt.Errorf("error checking config file: %w", err)
		}
		if len(violations) > 0 {
			return nil, &schema.Error{File: used, Violations: violations}
		}
	}

	// Environment variables, GITHOOKS_CLANGTIDY_BUILD style for nested keys
	viper.SetEnvPrefix("GITHOOKS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.File = used

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func readConfigFile(configPath string) (string, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return "", fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
		return configPath, nil
	}

	for _, path := range configFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return "", fmt.Errorf("error reading config file %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if !isFormat(config.Format) {
		return fmt.Errorf("invalid format: %s. Must be one of %s", config.Format, strings.Join(Formats, ", "))
	}

	if config.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}

	if config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if config.Quiet && config.Verbose {
		return fmt.Errorf("quiet and verbose are mutually exclusive")
	}

	if config.CommitMessage.MaxLineLength < 1 {
		return fmt.Errorf("commitMessage.maxLineLength must be at least 1")
	}

	if config.ClangFormat.Tool == "" || config.ClangTidy.Tool == "" {
		return fmt.Errorf("tool names must not be empty")
	}

	return nil
}

func isFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// SaveConfig writes config as YAML to path
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
