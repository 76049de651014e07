// Package config holds the process configuration and its decoders.
//
// A Config arrives either as a nested map from a composition engine (Decode) or
// from a YAML/JSON file (Load). Unknown keys are rejected in both cases.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Features toggles optional behaviour of a process.
type Features struct {
	// SpeciesCounts adds the flat "species_counts" port.
	SpeciesCounts bool `mapstructure:"species_counts" yaml:"species_counts" json:"species_counts"`
	// Reactions adds the read-only "reactions" port listing model rate constants.
	Reactions bool `mapstructure:"reactions" yaml:"reactions" json:"reactions"`
	// KillExisting clears a species before re-seeding it on every interval.
	KillExisting bool `mapstructure:"kill_existing" yaml:"kill_existing" json:"kill_existing"`
}

// Config is the configuration of one process instance.
type Config struct {
	ModelPath        string             `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	Animate          bool               `mapstructure:"animate" yaml:"animate" json:"animate"`
	Seed             int64              `mapstructure:"seed" yaml:"seed" json:"seed"`
	Boundaries       *domain.Boundaries `mapstructure:"boundaries" yaml:"boundaries,omitempty" json:"boundaries,omitempty"`
	SpeciesOverrides map[string]int     `mapstructure:"species_overrides" yaml:"species_overrides,omitempty" json:"species_overrides,omitempty"`
	Features         Features           `mapstructure:"features" yaml:"features" json:"features"`
	Sentinel         string             `mapstructure:"sentinel" yaml:"sentinel" json:"sentinel"`
	AllowWarnings    bool               `mapstructure:"allow_warnings" yaml:"allow_warnings" json:"allow_warnings"`
}

// Default returns the configuration every decode starts from.
func Default() Config {
	return Config{
		Features: Features{KillExisting: true},
		Sentinel: domain.DefaultSentinel,
	}
}

// Decode builds a Config from an engine-supplied map over the defaults.
func Decode(raw map[string]any) (Config, error) {
	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, &domain.ConfigurationError{Field: "config", Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a configuration file (YAML or JSON, by extension) and decodes it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	cfg, err := Decode(raw)
	if err != nil {
		return Config{}, err
	}
	// Relative model paths resolve against the config file.
	if cfg.ModelPath != "" && !filepath.IsAbs(cfg.ModelPath) {
		cfg.ModelPath = filepath.Join(filepath.Dir(path), cfg.ModelPath)
	}
	return cfg, nil
}

// Validate checks the fields that can be checked without opening the model.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ModelPath) == "" {
		return &domain.ConfigurationError{Field: "model_path", Reason: "a model file path is required"}
	}
	if strings.TrimSpace(c.Sentinel) == "" {
		return &domain.ConfigurationError{Field: "sentinel", Reason: "must not be blank"}
	}
	if c.Boundaries != nil {
		if err := c.Boundaries.Validate(); err != nil {
			return err
		}
	}
	for name, n := range c.SpeciesOverrides {
		if n < 0 {
			return &domain.ConfigurationError{Field: "species_overrides." + name, Reason: domain.ErrNegativeCount.Error()}
		}
	}
	return nil
}

// Map renders the configuration as the nested map form accepted by Decode.
func (c Config) Map() map[string]any {
	out := map[string]any{
		"model_path": c.ModelPath,
		"animate":    c.Animate,
		"seed":       c.Seed,
		"features": map[string]any{
			"species_counts": c.Features.SpeciesCounts,
			"reactions":      c.Features.Reactions,
			"kill_existing":  c.Features.KillExisting,
		},
		"sentinel":       c.Sentinel,
		"allow_warnings": c.AllowWarnings,
	}
	if c.Boundaries != nil {
		out["boundaries"] = map[string]any{"low": c.Boundaries.Low, "high": c.Boundaries.High}
	}
	if len(c.SpeciesOverrides) > 0 {
		overrides := make(map[string]any, len(c.SpeciesOverrides))
		for k, v := range c.SpeciesOverrides {
			overrides[k] = v
		}
		out["species_overrides"] = overrides
	}
	return out
}
