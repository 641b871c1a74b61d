package generator

import (
	"errors"
	"fmt"
	"runtime"
)

var ErrAffinityUnsupported = errors.New("thread affinity is not supported on " + runtime.GOOS)

// Pinner binds the calling worker goroutine to an execution resource. It is
// called once from inside each worker before the worker starts generating.
type Pinner interface {
	Pin(worker int) error
}

// NoPin leaves scheduling to the Go runtime.
type NoPin struct{}

func (NoPin) Pin(int) error { return nil }

// CorePinner locks each worker to its own OS thread and restricts that thread
// to one logical core: Cores[worker] when Cores is set, otherwise the worker
// cycles through the cores the process may run on (which need not start at 0
// under a cpuset or taskset).
type CorePinner struct {
	Cores []int
}

func (p CorePinner) CoreFor(worker int) (int, error) {
	if len(p.Cores) == 0 {
		allowed, err := allowedCores()
		if err != nil {
			return 0, fmt.Errorf("read allowed cores: %w", err)
		}
		if len(allowed) == 0 {
			return 0, errors.New("no cores available for pinning")
		}
		return allowed[worker%len(allowed)], nil
	}
	if worker >= len(p.Cores) {
		return 0, fmt.Errorf("no core configured for worker %d", worker)
	}
	return p.Cores[worker], nil
}

// Pin never unlocks the thread: when the worker returns, the runtime discards
// the thread together with its affinity mask.
func (p CorePinner) Pin(worker int) error {
	core, err := p.CoreFor(worker)
	if err != nil {
		return err
	}
	runtime.LockOSThread()
	if err := setAffinity(core); err != nil {
		return fmt.Errorf("pin to core %d: %w", core, err)
	}
	return nil
}

// PinnerFunc adapts a function to Pinner.
type PinnerFunc func(worker int) error

func (f PinnerFunc) Pin(worker int) error { return f(worker) }
