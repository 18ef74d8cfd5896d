package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. A double underscore
// descends one level: PRACTICEBOT_WORKBOOK__SOURCE sets workbook.source.
const EnvPrefix = "PRACTICEBOT_"

// Load builds a Config by layering, low to high precedence:
//  1. DefaultConfig()
//  2. the YAML file at path, if path is set
//  3. PRACTICEBOT_* environment variables
//
// A path that does not exist yet gets the defaults written to it, so a first
// run leaves an editable file behind.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		switch _, err := os.Stat(path); {
		case errors.Is(err, fs.ErrNotExist):
			if err := Save(path, DefaultConfig()); err != nil {
				return nil, fmt.Errorf("write default config: %w", err)
			}
		case err != nil:
			return nil, err
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
