package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config values.
const EnvPrefix = "DOTNET_MONITOR"

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for dotnet-monitor.yaml/.yml in standard locations.
// The search requires an explicit YAML extension so the binary itself (same base
// name, no extension) is never picked up as a config file.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No search paths: ReadInConfig returns ConfigFileNotFoundError,
		// which LoadConfig treats as "environment only".
		viper.SetConfigName("dotnet-monitor")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: DOTNET_MONITOR_GENERATE_KEY_OUTPUT
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a dotnet-monitor config file.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".dotnet-monitor"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "dotnet-monitor"))
		}
	} else {
		paths = append(paths, "/etc/dotnet-monitor")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths returns the first dotnet-monitor.yaml or .yml found in
// the given directories, or an empty string.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "dotnet-monitor"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds every config key so nested values can be
// overridden from the environment even when absent from the file.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("log_level")
	_ = viper.BindEnv("language")

	_ = viper.BindEnv("generate_key.output")
	_ = viper.BindEnv("generate_key.key_type")
	_ = viper.BindEnv("generate_key.environment.prefix")
	_ = viper.BindEnv("generate_key.environment.separator")
}

// LoadConfig reads the configuration file, applies environment and bound
// flag overrides, sets defaults, validates and returns the ToolConfig.
func LoadConfig() (*ToolConfig, error) {
	cfg, err := LoadConfigRaw()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults,
// but does NOT validate.
func LoadConfigRaw() (*ToolConfig, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars only
	}

	var cfg ToolConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was loaded.
// Returns an empty string if no config file was found (env vars only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
