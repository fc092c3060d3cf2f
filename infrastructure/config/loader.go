// Package config provides scenario loading and parsing.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/reflex-go/domain/config"
)

// Loader loads scenario configuration from files.
type Loader struct {
	// ExpandEnv enables environment variable expansion.
	ExpandEnv bool
	// StrictEnv fails if referenced env vars are missing.
	StrictEnv bool
	// Validate enables scenario validation.
	Validate bool
}

// NewLoader creates a new scenario loader with default settings.
func NewLoader() *Loader {
	return &Loader{
		ExpandEnv: true,
		StrictEnv: false,
		Validate:  true,
	}
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithEnvExpansion enables or disables environment variable expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.ExpandEnv = enabled
	}
}

// WithStrictEnv enables strict environment variable checking.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.StrictEnv = enabled
	}
}

// WithValidation enables or disables scenario validation.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.Validate = enabled
	}
}

// NewLoaderWithOptions creates a loader with the specified options.
func NewLoaderWithOptions(opts ...LoaderOption) *Loader {
	l := NewLoader()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile loads a scenario from a file path. The format is derived
// from the extension: .yaml/.yml or .json.
func (l *Loader) LoadFile(path string) (*config.Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", config.ErrScenarioNotFound, path)
		}
		return nil, fmt.Errorf("failed to access scenario file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", config.ErrInvalidFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return l.LoadYAML(f)
	case ".json":
		return l.LoadJSON(f)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %s", config.ErrInvalidFormat, filepath.Ext(path))
	}
}

// LoadYAML loads a scenario from a YAML reader.
func (l *Loader) LoadYAML(r io.Reader) (*config.Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	data, err = l.expand(data)
	if err != nil {
		return nil, err
	}

	var scenario config.Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
	}

	return l.finish(&scenario)
}

// LoadJSON loads a scenario from a JSON reader.
func (l *Loader) LoadJSON(r io.Reader) (*config.Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	data, err = l.expand(data)
	if err != nil {
		return nil, err
	}

	var scenario config.Scenario
	if err := json.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
	}

	return l.finish(&scenario)
}

// expand applies environment variable expansion when enabled.
func (l *Loader) expand(data []byte) ([]byte, error) {
	if !l.ExpandEnv {
		return data, nil
	}

	expander := &envExpander{strict: l.StrictEnv}
	expanded, err := expander.Expand(string(data))
	if err != nil {
		return nil, err
	}
	return []byte(expanded), nil
}

// finish applies defaults and validation to a decoded scenario.
func (l *Loader) finish(scenario *config.Scenario) (*config.Scenario, error) {
	if scenario.World == "" {
		scenario.World = "vacuum"
	}
	if scenario.Store.Backend == "" {
		scenario.Store.Backend = config.BackendMemory
	}

	if l.Validate {
		if err := scenario.Validate(); err != nil {
			return nil, err
		}
	}

	return scenario, nil
}
