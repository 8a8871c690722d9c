package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the app-level configuration: where the database lives and
// where sync pulls from. Flags can still override individual values.
type Config struct {
	DBPath     string `koanf:"db_path" validate:"required"`
	SeedPath   string `koanf:"seed_path"`
	RemoteURL  string `koanf:"remote_url" validate:"omitempty,url"`
	Collection string `koanf:"collection"`
	ExportDir  string `koanf:"export_dir"`
}

func defaults() Config {
	return Config{
		DBPath:     "tobewise.sqlite",
		SeedPath:   "data/quotes.json",
		Collection: "quotes",
		ExportDir:  "export",
	}
}

// Load reads the optional YAML config file, then TOBEWISE_* environment
// variables, then validates the result. A missing file is fine;
// defaults cover everything except what validation rejects.
func Load(path string) (Config, error) {
	cfg := defaults()
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("failed to load config file %q: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("TOBEWISE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TOBEWISE_"))
	}), nil); err != nil {
		return cfg, fmt.Errorf("failed to load environment config: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
