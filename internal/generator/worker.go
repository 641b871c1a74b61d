package generator

import (
	"context"
	"fmt"
	"sync/atomic"

	"Solvanity/internal/crypto"
	"Solvanity/internal/patterns"
	"Solvanity/pkg/config"
)

type msgKind uint8

const (
	msgIterations msgKind = iota
	msgFound
)

// message travels from workers to the coordinator: either an iteration count
// or one found keypair.
type message struct {
	kind   msgKind
	count  uint64
	key    crypto.Keypair
	worker int
}

type worker struct {
	id     int
	src    crypto.Source
	pred   patterns.Predicate
	pinner Pinner
	batch  int
	out    chan<- message

	// unreported receives the iterations still held when the worker exits.
	unreported *atomic.Uint64
}

// run pins the worker, reports on ready, waits for start and then generates
// until ctx is cancelled. Cancellation is observed at batch boundaries and
// while blocked handing over a match.
func (w *worker) run(ctx context.Context, ready chan<- error, start <-chan struct{}) error {
	if err := w.pinner.Pin(w.id); err != nil {
		err = fmt.Errorf("%w: worker %d: %v", ErrResource, w.id, err)
		ready <- err
		return err
	}
	ready <- nil

	select {
	case <-start:
	case <-ctx.Done():
		return nil
	}

	// pending counts keys generated but not yet reported
	var pending uint64
	defer func() { w.unreported.Add(pending) }()

	for ctx.Err() == nil {
		for i := 0; i < w.batch; i++ {
			kp, err := w.src.Generate()
			if err != nil {
				return fmt.Errorf("%w: worker %d: generate: %v", ErrResource, w.id, err)
			}
			pending++
			ok, err := w.pred.Match(kp.Address)
			if err != nil {
				return fmt.Errorf("%w: %w: worker %d: %v", ErrMatcher, config.ErrInvalidConfig, w.id, err)
			}
			if !ok {
				continue
			}
			select {
			case w.out <- message{kind: msgFound, key: kp, worker: w.id}:
			case <-ctx.Done():
				return nil
			}
		}

		// A full channel must not stall generation: keep the count and
		// report it with the next batch.
		select {
		case w.out <- message{kind: msgIterations, count: pending, worker: w.id}:
			pending = 0
		default:
		}
	}
	return nil
}
