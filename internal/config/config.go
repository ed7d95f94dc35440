// relnotes - Conventional-commit changelog and release notes generator
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/relnotes

// Package config provides layered configuration for relnotes using koanf.
// Configuration is loaded with priority: overrides (CLI flags) > environment variables
// (RELNOTES_*) > project config (.relnotes.yml or .relnotes.json) > user config
// (~/.config/relnotes/config.yml) > defaults. The merged Configuration is built once
// and then completed from repository metadata by Resolve.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read into the configuration.
const EnvPrefix = "RELNOTES_"

// TypeTitle maps a commit type to the title of its section.
type TypeTitle struct {
	Type  string `koanf:"type" yaml:"type" validate:"required"`
	Title string `koanf:"title" yaml:"title" validate:"required"`
}

// Titles holds the titles of the sections that are not tied to a commit type.
type Titles struct {
	BreakingChanges string `koanf:"breaking_changes" yaml:"breaking_changes" validate:"required"`
	Contributors    string `koanf:"contributors" yaml:"contributors"`
}

// Configuration represents the relnotes configuration after all layers are merged.
type Configuration struct {
	// Types lists the commit types that get a section, in rendering order.
	Types  []TypeTitle `koanf:"types" yaml:"types" validate:"required,min=1,dive"`
	Titles Titles      `koanf:"titles" yaml:"titles"`

	// ScopeMap rewrites scope aliases to a canonical name.
	ScopeMap map[string]string `koanf:"scope_map" yaml:"scope_map"`

	Contributors        bool `koanf:"contributors" yaml:"contributors"`
	ContributorsSection bool `koanf:"contributors_section" yaml:"contributors_section"`
	Capitalize          bool `koanf:"capitalize" yaml:"capitalize"`
	Group               bool `koanf:"group" yaml:"group"`
	Emoji               bool `koanf:"emoji" yaml:"emoji"`
	// DuplicateBreaking lists breaking commits under their type section as well
	// as under the breaking changes section.
	DuplicateBreaking bool `koanf:"duplicate_breaking" yaml:"duplicate_breaking"`

	// Provider selects the hosting service: github or gitlab.
	Provider   string `koanf:"provider" yaml:"provider" validate:"omitempty,oneof=github gitlab"`
	Token      string `koanf:"token" yaml:"token"`
	BaseURL    string `koanf:"base_url" yaml:"base_url"`
	BaseURLAPI string `koanf:"base_url_api" yaml:"base_url_api"`

	Repo        string `koanf:"repo" yaml:"repo"`
	ReleaseRepo string `koanf:"release_repo" yaml:"release_repo"`
	From        string `koanf:"from" yaml:"from"`
	To          string `koanf:"to" yaml:"to"`

	// Name is the release title. Defaults to the tag.
	Name  string `koanf:"name" yaml:"name"`
	Draft bool   `koanf:"draft" yaml:"draft"`
	// Prerelease is nil until set by a layer or inferred from To.
	Prerelease *bool `koanf:"prerelease" yaml:"prerelease"`

	Dry    bool   `koanf:"dry" yaml:"dry"`
	Output string `koanf:"output" yaml:"output"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .relnotes.yml)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (default: ~/.config/relnotes/config.yml)
	UserConfigPath string
	// SkipUserConfig ignores the user-level config file
	SkipUserConfig bool
	// Overrides are applied last, keyed by dotted config path (e.g. "titles.contributors").
	Overrides map[string]any
}

// Load loads configuration from user, project, and environment sources.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k, err := loadLayers(opts)
	if err != nil {
		return nil, err
	}
	return finalizeConfig(k)
}

// loadLayers merges every layer into a single koanf instance.
func loadLayers(opts LoadOptions) (*koanf.Koanf, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k, opts.UserConfigPath); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("applying override %s: %w", key, err)
		}
	}

	return k, nil
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config when it exists.
func loadUserConfig(k *koanf.Koanf, customPath string) error {
	path := customPath
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "user"); err != nil {
		return fmt.Errorf("loading user YAML config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the project-level config. An explicit path is
// required to exist; otherwise .relnotes.yml is preferred over .relnotes.json.
func loadProjectConfig(k *koanf.Koanf, customPath string) error {
	if customPath != "" {
		if !fileExists(customPath) {
			return fmt.Errorf("config file %s not found", customPath)
		}
		if strings.HasSuffix(customPath, ".json") {
			return loadJSONConfig(k, customPath, "project")
		}
		return loadYAMLConfig(k, customPath, "project")
	}

	if path := ProjectConfigPath(); fileExists(path) {
		if err := loadYAMLConfig(k, path, "project"); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		return nil
	}

	if path := ProjectJSONConfigPath(); fileExists(path) {
		if err := loadJSONConfig(k, path, "project"); err != nil {
			return fmt.Errorf("loading project JSON config: %w", err)
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadJSONConfig loads a JSON config file
func loadJSONConfig(k *koanf.Koanf, path, configType string) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged layers
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: RELNOTES_BASE_URL -> base_url
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}
