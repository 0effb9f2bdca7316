// Package config provides configuration types for the dotnet-monitor tool.
//
// Two trees live here. ToolConfig holds the operator's settings for the
// command itself (loaded through Viper from a YAML file and environment
// variables). RootOptions is the server-side configuration object model;
// the generatekey command builds a fragment of it for the operator to hand
// to the monitoring server.
package config

// ToolConfig is the top-level configuration of the dotnet-monitor command.
type ToolConfig struct {
	// LogLevel sets the minimum log level written to stderr.
	// Valid values: "debug", "info", "warn", "error".
	// Defaults to "warn" so that only the rendered output reaches the operator.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Language selects the message catalogue (BCP 47 tag, e.g. "en", "de").
	// Defaults to "en".
	Language string `yaml:"language" mapstructure:"language" validate:"omitempty,language_tag"`

	// GenerateKey configures the generatekey command.
	GenerateKey GenerateKeyConfig `yaml:"generate_key" mapstructure:"generate_key"`
}

// GenerateKeyConfig configures API key generation and presentation.
type GenerateKeyConfig struct {
	// Output is the default output format name ("json", "text", "cmd",
	// "powershell", "shell"). Parsed by the command, not validated here, so
	// that an unknown value surfaces as an unknown-format error.
	// Defaults to "json".
	Output string `yaml:"output" mapstructure:"output"`

	// KeyType selects the key material generator.
	// "jwt" issues a signed JWT verified by an ECDSA public key.
	// "opaque" issues a random token verified by an argon2id hash.
	// Defaults to "jwt".
	KeyType string `yaml:"key_type" mapstructure:"key_type" validate:"omitempty,oneof=jwt opaque"`

	// Environment controls how configuration paths are written by the
	// cmd, powershell and shell output formats.
	Environment EnvironmentConfig `yaml:"environment" mapstructure:"environment"`
}

// EnvironmentConfig configures configuration path flattening.
type EnvironmentConfig struct {
	// Prefix is prepended to every flattened path (e.g. "DotnetMonitor_").
	Prefix string `yaml:"prefix" mapstructure:"prefix" validate:"omitempty,env_prefix"`

	// Separator joins nested keys. ":" is the configuration path separator;
	// "__" is accepted by shells that reject ':' in variable names.
	// Defaults to ":".
	Separator string `yaml:"separator" mapstructure:"separator" validate:"omitempty,oneof=: __"`
}

// Default values for optional fields.
const (
	DefaultLogLevel  = "warn"
	DefaultLanguage  = "en"
	DefaultOutput    = "json"
	DefaultKeyType   = "jwt"
	DefaultSeparator = ":"
)

// SetDefaults applies default values for optional fields.
func (c *ToolConfig) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.GenerateKey.Output == "" {
		c.GenerateKey.Output = DefaultOutput
	}
	if c.GenerateKey.KeyType == "" {
		c.GenerateKey.KeyType = DefaultKeyType
	}
	if c.GenerateKey.Environment.Separator == "" {
		c.GenerateKey.Environment.Separator = DefaultSeparator
	}
}

// RootOptions is the root of the monitoring server's configuration model.
// Branches left nil are not present and are skipped by every serializer.
type RootOptions struct {
	Authentication *AuthenticationOptions `json:"Authentication,omitempty" yaml:"Authentication,omitempty"`
}

// AuthenticationOptions groups the server's authentication settings.
type AuthenticationOptions struct {
	MonitorAPIKey *MonitorAPIKeyOptions `json:"MonitorApiKey,omitempty" yaml:"MonitorApiKey,omitempty"`
}

// MonitorAPIKeyOptions is the server-side record that accepts one API key.
type MonitorAPIKeyOptions struct {
	// Subject must match the subject of presented tokens.
	Subject string `json:"Subject,omitempty" yaml:"Subject,omitempty" validate:"required"`
	// PublicKey verifies presented tokens.
	PublicKey string `json:"PublicKey,omitempty" yaml:"PublicKey,omitempty" validate:"required"`
}

// NewMonitorAPIKeyOptions builds the minimal configuration fragment that lets
// the server recognize a key with the given subject and public key.
func NewMonitorAPIKeyOptions(subject, publicKey string) *RootOptions {
	return &RootOptions{
		Authentication: &AuthenticationOptions{
			MonitorAPIKey: &MonitorAPIKeyOptions{
				Subject:   subject,
				PublicKey: publicKey,
			},
		},
	}
}
