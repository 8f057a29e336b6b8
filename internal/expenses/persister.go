package expenses

import (
	"context"
	"sync"
	"time"

	"spesetracker/internal/core"
	"spesetracker/internal/kv"
	"spesetracker/internal/log"
	"spesetracker/internal/metrics"
)

// snapshotFunc returns a private copy of the collection and its version.
type snapshotFunc func() ([]core.Expense, uint64)

// persister owns the single goroutine that writes snapshots. Mutations only
// signal it; it reads the collection itself at write time, so whatever it
// writes is the newest state and one write is in flight at most.
type persister struct {
	store    kv.Writer
	key      string
	timeout  time.Duration
	snapshot snapshotFunc
	logger   *log.Logger

	kick chan struct{}
	stop chan struct{}
	done chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool

	mu        sync.Mutex
	attempted uint64
	changed   chan struct{}
}

func newPersister(store kv.Writer, key string, timeout time.Duration, snapshot snapshotFunc, logger *log.Logger) *persister {
	return &persister{
		store:    store,
		key:      key,
		timeout:  timeout,
		snapshot: snapshot,
		logger:   logger,
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		changed:  make(chan struct{}),
	}
}

func (p *persister) start() {
	p.startOnce.Do(func() {
		p.mu.Lock()
		p.started = true
		p.mu.Unlock()
		go p.run()
	})
}

// schedule never blocks; pending signals collapse into one.
func (p *persister) schedule() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.kick:
			p.persist()
		case <-p.stop:
			select {
			case <-p.kick:
				p.persist()
			default:
			}
			return
		}
	}
}

func (p *persister) persist() {
	records, version := p.snapshot()

	p.mu.Lock()
	already := version <= p.attempted
	p.mu.Unlock()
	if already {
		return
	}

	data, err := EncodeSnapshot(records)
	if err == nil {
		ctx := context.Background()
		cancel := func() {}
		if p.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
		}
		start := time.Now()
		err = p.store.Write(ctx, p.key, data)
		cancel()
		metrics.WriteDuration.Observe(time.Since(start).Seconds())
	}

	fields := log.NewFields().
		WithSnapshot(p.key, version, len(records), len(data)).
		WithOperation(log.OpPersist)
	if err != nil {
		metrics.Writes.WithLabelValues("error").Inc()
		p.logger.Error("Snapshot write failed, keeping in-memory state", fields.WithError(err).ToSlice()...)
	} else {
		metrics.Writes.WithLabelValues("ok").Inc()
		metrics.SnapshotBytes.Set(float64(len(data)))
		p.logger.Debug("Snapshot written", fields.ToSlice()...)
	}

	p.markAttempted(version)
}

func (p *persister) markAttempted(version uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if version > p.attempted {
		p.attempted = version
	}
	close(p.changed)
	p.changed = make(chan struct{})
}

// wait blocks until a write of version target (or newer) has been attempted.
func (p *persister) wait(ctx context.Context, target uint64) error {
	for {
		p.mu.Lock()
		if p.attempted >= target || !p.started {
			p.mu.Unlock()
			return nil
		}
		ch := p.changed
		p.mu.Unlock()

		select {
		case <-ch:
		case <-p.done:
			p.mu.Lock()
			ok := p.attempted >= target
			p.mu.Unlock()
			if !ok {
				return ErrClosed
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// shutdown stops the goroutine after it has handled any pending signal.
func (p *persister) shutdown() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.done
	}
}
