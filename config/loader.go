package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable binding.
const envPrefix = "APIQ"

// Options holds optional file paths for Load.
type Options struct {
	// File is an explicit YAML config file path.
	File string
	// EnvFile is an explicit .env file path.
	EnvFile string
}

// Option configures Load.
type Option func(*Options)

// WithFile sets an explicit config file path.
func WithFile(path string) Option {
	return func(o *Options) { o.File = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

// Load fills cfg from an optional YAML file, an optional .env file, and
// APIQ_-prefixed environment variables, in that order of precedence
// (environment wins).
func Load(cfg any, opts ...Option) error {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	if o.File == "" {
		o.File = findFirst("apiq.yml", "apiq.yaml", "config/apiq.yml")
	}
	if o.EnvFile == "" {
		o.EnvFile = findFirst(".env")
	}

	if o.EnvFile != "" {
		if err := godotenv.Load(o.EnvFile); err != nil {
			return fmt.Errorf("config: load env file %s: %w", o.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.File != "" {
		v.SetConfigFile(o.File)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", o.File, err)
		}
	}

	// AutomaticEnv alone does not surface env-only keys through Unmarshal;
	// bind every APIQ_ variable explicitly.
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], envPrefix+"_") {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(pair[0], envPrefix+"_"))
		for _, variant := range keyVariants(key) {
			v.Set(variant, pair[1])
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}
	return nil
}

// keyVariants expands an underscore-separated env key into every nesting the
// config struct might use: tls_ca_file covers tls_ca_file, tls.ca.file, and
// tls.ca_file.
func keyVariants(key string) []string {
	parts := strings.Split(key, "_")
	if len(parts) <= 1 {
		return []string{key}
	}

	variants := []string{key, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return variants
}

// findFirst returns the first existing path among candidates.
func findFirst(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
