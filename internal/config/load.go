package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/errors"
)

// newViperInstance creates a Viper instance with the TRUSTLINK_ env prefix,
// a key replacer and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(ctx context.Context, v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Bool("verifier.key_configured", cfg.Verifier.HasKey()).
		Str("verifier.route_path", cfg.Verifier.RoutePath).
		Dur("verifier.timeout", cfg.Verifier.Timeout).
		Str("site.locale", cfg.Site.Locale).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (TRUSTLINK_* prefix)
//  2. Project config (.trustlink/config.yaml)
//  3. Global config (~/.trustlink/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v, ProjectConfigPath()); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(ctx, v)
}

// loadGlobalConfig attempts to load ~/.trustlink/config.yaml.
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// getGlobalConfigPathIfExists returns the global config path if it exists.
func getGlobalConfigPathIfExists() (string, bool) {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil {
		return "", false
	}
	if !fileExists(globalConfigPath) {
		return "", false
	}
	return globalConfigPath, true
}

// loadProjectConfig merges the project config file at path over what is
// already loaded. Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper, path string) error {
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrapf(err, "failed to read project config file %s", path)
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// If configFile is non-empty it replaces the project config file, and it
// must exist. Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, configFile string, overrides *Config) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if configFile == "" {
		cfg, err = Load(ctx)
	} else {
		if !fileExists(configFile) {
			return nil, errors.Wrapf(os.ErrNotExist, "config file %s", configFile)
		}
		global, _ := getGlobalConfigPathIfExists()
		cfg, err = LoadFromPaths(ctx, configFile, global)
	}
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths.
//
// projectConfigPath is the path to project-level config (higher priority).
// globalConfigPath is the path to global config (lower priority).
// Either path can be empty to skip that level.
func LoadFromPaths(ctx context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(ctx, v)
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names, and every key needs a default
// for AutomaticEnv to see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("verifier.public_key", "")
	v.SetDefault("verifier.public_key_file", "")
	v.SetDefault("verifier.route_path", d.Verifier.RoutePath)
	v.SetDefault("verifier.signature_param", d.Verifier.SignatureParam)
	v.SetDefault("verifier.timeout", d.Verifier.Timeout.String())

	v.SetDefault("site.name", d.Site.Name)
	v.SetDefault("site.locale", d.Site.Locale)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.read_header_timeout", d.Server.ReadHeaderTimeout.String())
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout.String())
	v.SetDefault("server.guest_header", "")
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg, overrides *Config) {
	applyVerifierOverrides(&cfg.Verifier, &overrides.Verifier)

	if overrides.Site.Name != "" {
		cfg.Site.Name = overrides.Site.Name
	}
	if overrides.Site.Locale != "" {
		cfg.Site.Locale = overrides.Site.Locale
	}

	if overrides.Server.Listen != "" {
		cfg.Server.Listen = overrides.Server.Listen
	}
	if overrides.Server.ReadHeaderTimeout != 0 {
		cfg.Server.ReadHeaderTimeout = overrides.Server.ReadHeaderTimeout
	}
	if overrides.Server.ShutdownTimeout != 0 {
		cfg.Server.ShutdownTimeout = overrides.Server.ShutdownTimeout
	}
	if overrides.Server.GuestHeader != "" {
		cfg.Server.GuestHeader = overrides.Server.GuestHeader
	}
}

// applyVerifierOverrides applies verifier overrides. A key file override
// clears an inline key from lower layers so the flag actually takes effect.
func applyVerifierOverrides(cfg, overrides *VerifierConfig) {
	if overrides.PublicKey != "" {
		cfg.PublicKey = overrides.PublicKey
	}
	if overrides.PublicKeyFile != "" {
		cfg.PublicKeyFile = overrides.PublicKeyFile
		if overrides.PublicKey == "" {
			cfg.PublicKey = ""
		}
	}
	if overrides.RoutePath != "" {
		cfg.RoutePath = overrides.RoutePath
	}
	if overrides.SignatureParam != "" {
		cfg.SignatureParam = overrides.SignatureParam
	}
	if overrides.Timeout != 0 {
		cfg.Timeout = overrides.Timeout
	}
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
