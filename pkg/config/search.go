package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks every configuration error: unknown modes, missing
// mode parameters, malformed patterns. It is always detected before a search starts.
var ErrInvalidConfig = errors.New("invalid configuration")

type Mode string

const (
	ModeRegex     Mode = "regex"
	ModePrefix    Mode = "prefix"
	ModeSuffix    Mode = "suffix"
	ModeRepeating Mode = "repeating"
)

// Modes lists the supported match modes in display order.
var Modes = []Mode{ModeRegex, ModePrefix, ModeSuffix, ModeRepeating}

const (
	DefaultLimit            = 1
	DefaultBatch            = 1000
	DefaultProgressInterval = time.Second
	DefaultWindow           = 5 * time.Second
	DefaultScheme           = "solana"
	DefaultOutDir           = "keys"
)

// SearchConfig describes one vanity search. It can be loaded from a YAML
// profile and is then overlaid by flags and environment in the CLI.
type SearchConfig struct {
	Mode       Mode   `yaml:"mode"`
	Pattern    string `yaml:"pattern"`     // regex mode
	Word       string `yaml:"word"`        // prefix/suffix modes
	IgnoreCase bool   `yaml:"ignore_case"` // prefix/suffix modes
	Count      int    `yaml:"count"`       // repeating mode

	// RegexTimeout bounds one regex evaluation; 0 disables the limit.
	RegexTimeout time.Duration `yaml:"regex_timeout"`

	Limit   int `yaml:"limit"`
	Threads int `yaml:"threads"` // 0 -> logical core count

	Scheme     string `yaml:"scheme"`     // solana|solana-mnemonic|evm|evm-mnemonic
	Passphrase string `yaml:"passphrase"` // BIP-39 passphrase for mnemonic schemes

	PinCores bool  `yaml:"pin_cores"`
	Cores    []int `yaml:"cores"` // explicit core per worker, implies pin_cores

	OutDir           string `yaml:"out_dir"`
	KeystorePassword string `yaml:"-"`
	PassHint         string `yaml:"pass_hint"`

	PersistExcess      bool `yaml:"persist_excess"`
	StopOnPersistError bool `yaml:"stop_on_persist_error"`

	ProgressInterval time.Duration `yaml:"progress_interval"`
	Window           time.Duration `yaml:"window"`
}

// Default returns a config populated with defaults only.
func Default() SearchConfig {
	return SearchConfig{
		Limit:            DefaultLimit,
		Scheme:           DefaultScheme,
		OutDir:           DefaultOutDir,
		ProgressInterval: DefaultProgressInterval,
		Window:           DefaultWindow,
	}
}

// Read decodes a YAML search profile without validating it, so that flags
// and environment can still complete it. Missing keys keep their defaults.
func Read(path string) (*SearchConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode yaml %q: %w", path, err)
	}
	return &cfg, nil
}

// Load reads and validates a complete YAML search profile.
func Load(path string) (*SearchConfig, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the mode and its required parameters plus the run sizing.
// The regex itself is compiled later by the patterns package.
func (c *SearchConfig) Validate() error {
	if c == nil {
		return invalid("nil config")
	}
	switch c.Mode {
	case ModeRegex:
		if c.Pattern == "" {
			return invalid("pattern is required for regex mode")
		}
	case ModePrefix, ModeSuffix:
		if c.Word == "" {
			return invalid("word is required for %s mode", c.Mode)
		}
	case ModeRepeating:
		if c.Count < 1 {
			return invalid("count must be >= 1 for repeating mode")
		}
	case "":
		return invalid("mode must be set (one of %v)", Modes)
	default:
		return invalid("unknown mode %q (one of %v)", c.Mode, Modes)
	}

	if c.Limit < 1 {
		return invalid("limit must be >= 1")
	}
	if c.Threads < 0 {
		return invalid("threads must be >= 0")
	}
	for i, core := range c.Cores {
		if core < 0 {
			return invalid("cores[%d] must be >= 0", i)
		}
	}
	if c.ProgressInterval < time.Second {
		return invalid("progress_interval must be >= 1s")
	}
	if c.RegexTimeout < 0 {
		return invalid("regex_timeout must be >= 0")
	}
	if c.Window <= 0 {
		return invalid("window must be > 0")
	}

	switch c.Scheme {
	case "solana", "solana-mnemonic":
		if c.KeystorePassword != "" {
			return invalid("keystore encryption is only supported for evm schemes")
		}
	case "evm", "evm-mnemonic":
	default:
		return invalid("unknown scheme %q", c.Scheme)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
