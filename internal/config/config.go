package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	apperrors "github.com/mcncl/objgen/internal/errors"
)

// Policy values
const (
	PolicyComment = "comment"
	PolicyAbort   = "abort"
	PolicySkip    = "skip"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the complete configuration for objgen
type Config struct {
	RootType  string          `yaml:"root_type" validate:"omitempty,identifier"`
	Registry  RegistryConfig  `yaml:"registry"`
	Inference InferenceConfig `yaml:"inference"`
	Policy    PolicyConfig    `yaml:"policy"`
	Output    OutputConfig    `yaml:"output"`
	Dev       DevConfig       `yaml:"dev"`
}

// RegistryConfig lists the sources the type registry is populated from
type RegistryConfig struct {
	// Schemas are YAML registry files or JSON Schema files, chosen by extension.
	Schemas []string `yaml:"schemas" validate:"dive,required"`
	// Packages are Go package patterns loaded from source.
	Packages []string `yaml:"packages" validate:"dive,required"`
}

// InferenceConfig controls element type inference for untyped collections
type InferenceConfig struct {
	Aliases     map[string]string `yaml:"aliases" validate:"dive,keys,required,endkeys,required"`
	Shapes      []ShapeSignature  `yaml:"shapes" validate:"dive"`
	Singularize bool              `yaml:"singularize"`
}

// ShapeSignature maps a key set to a type name. An object matches when it
// has every key in Keys.
type ShapeSignature struct {
	Keys []string `yaml:"keys" validate:"required,min=1,dive,required"`
	Type string   `yaml:"type" validate:"required"`
}

// PolicyConfig controls how per-field failures are reported
type PolicyConfig struct {
	Unresolved   string `yaml:"unresolved" validate:"oneof=comment abort"`
	FormatErrors string `yaml:"format_errors" validate:"oneof=comment skip"`
}

// OutputConfig controls output formatting
type OutputConfig struct {
	Wrap       bool   `yaml:"wrap"`
	MethodName string `yaml:"method_name" validate:"omitempty,identifier"`
	Indent     string `yaml:"indent"`
	Header     string `yaml:"header"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug     bool   `yaml:"debug"`
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`
}

// envOverrides are read from the environment after the config file.
type envOverrides struct {
	RootType   string `env:"OBJGEN_ROOT_TYPE"`
	Unresolved string `env:"OBJGEN_POLICY_UNRESOLVED"`
	Debug      string `env:"OBJGEN_DEBUG"`
	LogFormat  string `env:"OBJGEN_LOG_FORMAT"`
}

var (
	validate          = newValidator()
	identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierPattern.MatchString(fl.Field().String())
	})
	return v
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			Schemas:  []string{},
			Packages: []string{},
		},
		Inference: InferenceConfig{
			Aliases:     make(map[string]string),
			Shapes:      []ShapeSignature{},
			Singularize: true,
		},
		Policy: PolicyConfig{
			Unresolved:   PolicyComment,
			FormatErrors: PolicyComment,
		},
		Output: OutputConfig{
			Wrap:   false,
			Indent: "    ",
		},
		Dev: DevConfig{
			Debug:     false,
			LogFormat: LogFormatText,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Relative registry paths are relative to the config file.
	dir := filepath.Dir(path)
	for i, p := range cfg.Registry.Schemas {
		if p != "" && !filepath.IsAbs(p) {
			cfg.Registry.Schemas[i] = filepath.Join(dir, p)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".objgen.yml", ".objgen.yaml", "objgen.yml", "objgen.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Load builds the effective configuration: defaults, then the config file
// (path, or the nearest one found when path is empty), then the environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FindConfigFile()
	}

	cfg := NewConfig()
	if path != "" {
		fileConfig, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv applies OBJGEN_* environment overrides.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return apperrors.NewConfigError("failed to read environment", err)
	}

	if env.RootType != "" {
		c.RootType = env.RootType
	}
	if env.Unresolved != "" {
		c.Policy.Unresolved = env.Unresolved
	}
	if env.LogFormat != "" {
		c.Dev.LogFormat = env.LogFormat
	}
	if env.Debug != "" {
		debug, err := strconv.ParseBool(env.Debug)
		if err != nil {
			return apperrors.NewConfigError(fmt.Sprintf("OBJGEN_DEBUG: invalid boolean %q", env.Debug), err)
		}
		c.Dev.Debug = debug
	}
	return nil
}

// Validate checks the configuration against its field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	valErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewConfigError("invalid configuration", err)
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, fieldPath(ve)+": "+formatValidationError(ve))
	}
	return apperrors.NewConfigError(strings.Join(messages, "; "), nil)
}

// fieldPath returns the yaml path of a failing field, e.g. policy.unresolved.
func fieldPath(ve validator.FieldError) string {
	ns := ve.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		parts[i] = yamlName(p)
	}
	return strings.Join(parts, ".")
}

var yamlNames = map[string]string{
	"RootType":     "root_type",
	"FormatErrors": "format_errors",
	"MethodName":   "method_name",
	"LogFormat":    "log_format",
}

func yamlName(goName string) string {
	base, index, _ := strings.Cut(goName, "[")
	name, ok := yamlNames[base]
	if !ok {
		name = strings.ToLower(base)
	}
	if index != "" {
		name += "[" + index
	}
	return name
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "identifier":
		return "must be a valid identifier"
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

// FindAlias returns the type name aliased to a field name
func (c *Config) FindAlias(fieldName string) (string, bool) {
	typeName, ok := c.Inference.Aliases[fieldName]
	return typeName, ok && typeName != ""
}

// Strict reports whether unresolved types abort generation.
func (c *Config) Strict() bool {
	return c.Policy.Unresolved == PolicyAbort
}

// MergeConfigs merges CLI overrides into a base config.
// Non-empty values from override take precedence over base values; lists
// and alias tables are appended.
func MergeConfigs(base, override *Config) *Config {
	merged := *base

	if override.RootType != "" {
		merged.RootType = override.RootType
	}

	merged.Registry.Schemas = append(append([]string{}, base.Registry.Schemas...), override.Registry.Schemas...)
	merged.Registry.Packages = append(append([]string{}, base.Registry.Packages...), override.Registry.Packages...)

	merged.Inference.Aliases = make(map[string]string, len(base.Inference.Aliases)+len(override.Inference.Aliases))
	for k, v := range base.Inference.Aliases {
		merged.Inference.Aliases[k] = v
	}
	for k, v := range override.Inference.Aliases {
		merged.Inference.Aliases[k] = v
	}
	merged.Inference.Shapes = append(append([]ShapeSignature{}, base.Inference.Shapes...), override.Inference.Shapes...)

	if override.Policy.Unresolved != "" {
		merged.Policy.Unresolved = override.Policy.Unresolved
	}
	if override.Policy.FormatErrors != "" {
		merged.Policy.FormatErrors = override.Policy.FormatErrors
	}

	// Booleans can only be switched on from the command line.
	merged.Output.Wrap = base.Output.Wrap || override.Output.Wrap
	merged.Dev.Debug = base.Dev.Debug || override.Dev.Debug

	if override.Output.MethodName != "" {
		merged.Output.MethodName = override.Output.MethodName
	}
	if override.Dev.LogFormat != "" {
		merged.Dev.LogFormat = override.Dev.LogFormat
	}

	return &merged
}
