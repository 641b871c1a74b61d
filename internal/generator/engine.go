package generator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"Solvanity/internal/crypto"
	"Solvanity/internal/speed"
	"Solvanity/pkg/logx"

	"golang.org/x/sync/errgroup"
)

// queueDepth is the per-worker share of the message channel buffer.
const queueDepth = 64

// KeySink stores a found keypair durably.
type KeySink interface {
	Persist(kp crypto.Keypair) error
}

// Progress is a periodic snapshot of the search.
type Progress struct {
	Total   uint64
	Elapsed time.Duration
	Rate    float64 // keys/sec over the speed window
}

// ProgressSink receives snapshots at the coordinator's cadence.
type ProgressSink interface {
	Report(p Progress)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(Progress)

func (f ProgressFunc) Report(p Progress) { f(p) }

// SourceFactory returns the keypair source owned by one worker.
type SourceFactory func(worker int) (crypto.Source, error)

// Result is what a finished search produced.
type Result struct {
	Keys          []crypto.Keypair // at most Options.Limit entries
	Iterations    uint64           // every key generated, including counts still held by workers at exit
	Elapsed       time.Duration
	Rate          float64
	Excess        int     // matches received after the limit was reached
	PersistErrors []error // only when StopOnPersistError is off
}

// Engine coordinates one search at a time: it owns the worker pool, the
// message channel, the speed tracker and the stopping condition.
type Engine struct {
	Sink     KeySink      // optional
	Progress ProgressSink // optional
	Sources  SourceFactory
}

func NewEngine(sink KeySink, progress ProgressSink) *Engine {
	return &Engine{Sink: sink, Progress: progress}
}

// Run searches until opt.Limit matches were collected, ctx is cancelled or a
// worker fails. It returns only after every worker goroutine has exited.
//
// Configuration problems are reported before any worker is started. The
// returned Result is non-nil whenever workers were started, including on error.
func (e *Engine) Run(ctx context.Context, opt Options) (*Result, error) {
	opt = opt.withDefaults()
	if err := opt.validate(); err != nil {
		return nil, err
	}

	sources := make([]crypto.Source, opt.Workers)
	for i := range sources {
		src, err := e.newSource(i, opt)
		if err != nil {
			return nil, fmt.Errorf("%w: worker %d source: %v", ErrResource, i, err)
		}
		sources[i] = src
	}

	app := logx.S()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	msgs := make(chan message, opt.Workers*queueDepth)
	ready := make(chan error, opt.Workers)
	startGate := make(chan struct{})
	var unreported atomic.Uint64

	for i := 0; i < opt.Workers; i++ {
		w := &worker{
			id:     i,
			src:    sources[i],
			pred:   opt.Predicate.Clone(),
			pinner: opt.Pinner,
			batch:  opt.Batch,
			out:    msgs,

			unreported: &unreported,
		}
		g.Go(func() error { return w.run(gctx, ready, startGate) })
	}

	var startErr error
	for i := 0; i < opt.Workers; i++ {
		if err := <-ready; err != nil && startErr == nil {
			startErr = err
		}
	}
	if startErr != nil {
		cancel()
		_ = g.Wait()
		return nil, startErr
	}

	_, unpinned := opt.Pinner.(NoPin)
	pinned := !unpinned
	start := time.Now()
	close(startGate)
	app.Infow("search started",
		"mode", opt.Predicate.Kind(),
		"scheme", opt.Scheme,
		"workers", opt.Workers,
		"limit", opt.Limit,
		"pinned", pinned,
	)

	res := &Result{}
	tracker := speed.NewTracker(opt.Window)
	runErr := e.drain(gctx, opt, msgs, start, tracker, res)

	cancel()
	workerErr := g.Wait()
	e.drainExcess(opt, msgs, res)
	res.Iterations += unreported.Load()

	res.Elapsed = time.Since(start)
	res.Rate = tracker.Rate()

	// a worker failure cancels gctx, so it outranks the drain error it caused
	err := runErr
	if workerErr != nil {
		if runErr != nil {
			err = workerErr
		} else {
			app.Warnw("worker failed after the limit was reached", "err", workerErr)
		}
	}

	app.Infow("search stopped",
		"found", len(res.Keys),
		"attempts", res.Iterations,
		"excess", res.Excess,
		"elapsed", humanDuration(res.Elapsed),
		"err", err,
	)
	return res, err
}

func (e *Engine) newSource(worker int, opt Options) (crypto.Source, error) {
	if e.Sources != nil {
		return e.Sources(worker)
	}
	return crypto.NewSource(opt.Scheme, opt.Passphrase)
}

// drain is the coordinator loop. It returns nil once the limit is reached.
func (e *Engine) drain(ctx context.Context, opt Options, msgs <-chan message, start time.Time, tracker *speed.Tracker, res *Result) error {
	ticker := time.NewTicker(opt.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			e.report(Progress{
				Total:   res.Iterations,
				Elapsed: now.Sub(start),
				Rate:    tracker.Rate(),
			})

		case m := <-msgs:
			switch m.kind {
			case msgIterations:
				res.Iterations += m.count
				tracker.Record(time.Now(), m.count)
			case msgFound:
				if err := e.persist(opt, m.key, res); err != nil {
					return err
				}
				res.Keys = append(res.Keys, m.key)
				e.logFound(opt, m, start, res)
				if len(res.Keys) >= opt.Limit {
					return nil
				}
			}
		}
	}
}

// drainExcess empties the channel after all workers have exited.
func (e *Engine) drainExcess(opt Options, msgs <-chan message, res *Result) {
	for {
		select {
		case m := <-msgs:
			switch m.kind {
			case msgIterations:
				res.Iterations += m.count
			case msgFound:
				res.Excess++
				if !opt.PersistExcess || e.Sink == nil {
					continue
				}
				if err := e.Sink.Persist(m.key); err != nil {
					res.PersistErrors = append(res.PersistErrors, fmt.Errorf("%w: %s: %v", ErrPersist, m.key.Address, err))
					logx.S().Errorw("persist excess key failed", "address", m.key.Address, "err", err)
				}
			}
		default:
			return
		}
	}
}

func (e *Engine) persist(opt Options, kp crypto.Keypair, res *Result) error {
	if e.Sink == nil {
		return nil
	}
	err := e.Sink.Persist(kp)
	if err == nil {
		return nil
	}
	err = fmt.Errorf("%w: %s: %v", ErrPersist, kp.Address, err)
	if opt.StopOnPersistError {
		return err
	}
	logx.S().Errorw("persist key failed, continuing", "address", kp.Address, "err", err)
	res.PersistErrors = append(res.PersistErrors, err)
	return nil
}

func (e *Engine) report(p Progress) {
	logx.S().Debugw("progress",
		"attempts", p.Total,
		"rate_keys_per_sec", fmt.Sprintf("%.2f", p.Rate),
		"elapsed", humanDuration(p.Elapsed),
	)
	if e.Progress != nil {
		e.Progress.Report(p)
	}
}

// logFound records a match at debug level; announcing it to the user is the
// key sink's job.
func (e *Engine) logFound(opt Options, m message, start time.Time, res *Result) {
	fields := []any{
		"address", m.key.Address,
		"scheme", m.key.Scheme,
		"worker", m.worker,
		"found", len(res.Keys),
		"attempts", res.Iterations,
		"elapsed", humanDuration(time.Since(start)),
	}
	if opt.LogSecrets {
		fields = append(fields, "private_key", m.key.SecretString())
		if m.key.Mnemonic != "" {
			fields = append(fields, "mnemonic", m.key.Mnemonic)
		}
	}
	logx.S().Debugw("FOUND", fields...)
}
