// Package config loads optional persistent defaults for the CLI: a TOML
// file under the XDG config path, overridable through TEMPO_* environment
// variables (with .env files honored). Flags set on the command line
// always win.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the optional tempo configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults. Nil means unset.
type DefaultsConfig struct {
	ChunkSize    *string `toml:"chunk_size"`
	BWLimit      *string `toml:"bwlimit"`
	Faster       *bool   `toml:"faster"`
	StrongVerify *bool   `toml:"strong_verify"`
	RestFiles    *int    `toml:"rest_files"`
	RestSeconds  *int    `toml:"rest_seconds"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "tempo", "config.toml")
}

// Load reads the config file and applies environment overrides. A missing
// file yields a zero Config without error; configuration is always
// optional.
func Load() (Config, error) {
	// A .env in the working directory may supply TEMPO_* variables.
	_ = godotenv.Load()

	var cfg Config
	if path := Path(); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	applyEnv(&cfg.Defaults)
	return cfg, nil
}

func applyEnv(d *DefaultsConfig) {
	if v, ok := os.LookupEnv("TEMPO_CHUNK_SIZE"); ok {
		d.ChunkSize = &v
	}
	if v, ok := os.LookupEnv("TEMPO_BWLIMIT"); ok {
		d.BWLimit = &v
	}
	if v, ok := os.LookupEnv("TEMPO_FASTER"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			d.Faster = &b
		}
	}
	if v, ok := os.LookupEnv("TEMPO_STRONG_VERIFY"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			d.StrongVerify = &b
		}
	}
	if v, ok := os.LookupEnv("TEMPO_REST_FILES"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			d.RestFiles = &n
		}
	}
	if v, ok := os.LookupEnv("TEMPO_REST_SECONDS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			d.RestSeconds = &n
		}
	}
}
