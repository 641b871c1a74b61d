package generator

import (
	"fmt"
	"runtime"
	"time"

	"Solvanity/internal/crypto"
	"Solvanity/internal/patterns"
	"Solvanity/pkg/config"
)

// Options is the immutable snapshot a search runs with.
type Options struct {
	Predicate patterns.Predicate
	Limit     int
	Workers   int // 0 -> runtime.NumCPU()

	Scheme     crypto.Scheme
	Passphrase string

	// Pinner binds each worker to an execution resource; nil means no pinning.
	Pinner Pinner

	Batch            int           // keypairs per iteration report, default 1000
	ProgressInterval time.Duration // default 1s
	Window           time.Duration // speed window, default 5s

	// PersistExcess persists matches that arrive after the limit was reached.
	// They are never added to Result.Keys either way.
	PersistExcess bool
	// StopOnPersistError aborts the run on the first key sink failure instead
	// of collecting failures in Result.PersistErrors.
	StopOnPersistError bool

	// LogSecrets adds private material to the debug-level FOUND log lines.
	LogSecrets bool
}

// OptionsFrom compiles the predicate and sizes the pool from a validated
// search config. defaultWorkers is used when cfg.Threads is 0; when it is 0
// too the logical core count is used.
func OptionsFrom(cfg *config.SearchConfig, defaultWorkers int) (Options, error) {
	if err := cfg.Validate(); err != nil {
		return Options{}, err
	}
	pred, err := patterns.New(patterns.SpecFrom(cfg))
	if err != nil {
		return Options{}, err
	}

	workers := cfg.Threads
	if workers == 0 {
		workers = defaultWorkers
	}
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	opt := Options{
		Predicate:          pred,
		Limit:              cfg.Limit,
		Workers:            workers,
		Scheme:             crypto.Scheme(cfg.Scheme),
		Passphrase:         cfg.Passphrase,
		ProgressInterval:   cfg.ProgressInterval,
		Window:             cfg.Window,
		PersistExcess:      cfg.PersistExcess,
		StopOnPersistError: cfg.StopOnPersistError,
	}

	switch {
	case len(cfg.Cores) > 0:
		if len(cfg.Cores) < workers {
			return Options{}, fmt.Errorf("%w: %d cores given for %d workers", config.ErrInvalidConfig, len(cfg.Cores), workers)
		}
		opt.Pinner = CorePinner{Cores: cfg.Cores}
	case cfg.PinCores:
		opt.Pinner = CorePinner{}
	}
	return opt, nil
}

func (o Options) withDefaults() Options {
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Batch == 0 {
		o.Batch = config.DefaultBatch
	}
	if o.ProgressInterval == 0 {
		o.ProgressInterval = config.DefaultProgressInterval
	}
	if o.Window == 0 {
		o.Window = config.DefaultWindow
	}
	if o.Scheme == "" {
		o.Scheme = crypto.SchemeSolana
	}
	if o.Pinner == nil {
		o.Pinner = NoPin{}
	}
	return o
}

func (o Options) validate() error {
	switch {
	case o.Predicate == nil:
		return fmt.Errorf("%w: no match predicate", config.ErrInvalidConfig)
	case o.Limit < 1:
		return fmt.Errorf("%w: limit must be >= 1", config.ErrInvalidConfig)
	case o.Workers < 1:
		return fmt.Errorf("%w: workers must be >= 1", config.ErrInvalidConfig)
	case o.Batch < 1:
		return fmt.Errorf("%w: batch must be >= 1", config.ErrInvalidConfig)
	case o.ProgressInterval < 0 || o.Window < 0:
		return fmt.Errorf("%w: negative interval", config.ErrInvalidConfig)
	}
	return nil
}
