package appcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Language             string `yaml:"language"`  // "en" | "ru"
	LogLevel             string `yaml:"log_level"` // "debug"|"info"|"warn"|"error"
	LogFile              string `yaml:"log_file"`  // optional, may contain {start} and {pid}
	HideSecretsInConsole bool   `yaml:"hide_secrets_in_console"`
	Cores                int    `yaml:"cores"` // default worker count when --threads is not given
}

// Defaults is used when configs/app.yaml is missing or broken.
func Defaults() *Config {
	return &Config{Language: "en", LogLevel: "info", HideSecretsInConsole: true}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open app config %q: %w", path, err)
	}
	defer f.Close()

	c := Defaults()
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return nil, fmt.Errorf("decode app yaml %q: %w", path, err)
	}

	if c.Language == "" {
		c.Language = "en"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Cores < 0 {
		return nil, fmt.Errorf("app yaml %q: cores must be >= 0", path)
	}
	return c, nil
}
