// Package bridge keeps the local dictionary and the service copy in step:
// full pulls on demand and fire-and-forget full pushes after each mutation.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/verte-zerg/morfo/internal/model"
)

var (
	// ErrSyncUnavailable is returned when the service dictionary cannot be read.
	ErrSyncUnavailable = errors.New("dictionary sync unavailable")
	// ErrNoMirror is returned by Restore when no local snapshot exists.
	ErrNoMirror = errors.New("no local dictionary mirror")
)

// Remote is the dictionary half of the linguistic service.
type Remote interface {
	Dict(ctx context.Context) (model.Dictionary, error)
	UpdateDict(ctx context.Context, d model.Dictionary) error
}

// Mirror persists dictionary snapshots locally.
type Mirror interface {
	SaveDictionary(ctx context.Context, d model.Dictionary) error
	LoadDictionary(ctx context.Context) (model.Dictionary, bool, error)
}

// Bridge pulls and pushes whole dictionaries. Pushes are delivered by a single
// worker at most once; when several are queued only the newest is sent.
type Bridge struct {
	remote Remote
	mirror Mirror
	logger *log.Logger

	mu      sync.Mutex
	pending model.Dictionary
	queued  bool
	started bool
	closed  bool

	wake chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup
}

// New returns a bridge. mirror may be nil.
func New(remote Remote, mirror Mirror, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{
		remote: remote,
		mirror: mirror,
		logger: logger,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
}

// Start runs the push worker until ctx is done or Close is called.
func (b *Bridge) Start(ctx context.Context) {
	b.mu.Lock()
	if b.started || b.closed {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.wake:
				b.deliver(ctx)
			case <-b.stop:
				b.deliver(ctx)
				return
			}
		}
	}()
}

// Close stops the worker after delivering a pending snapshot.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	started := b.started
	b.mu.Unlock()
	close(b.stop)
	b.wg.Wait()
	if !started {
		b.deliver(context.Background())
	}
}

// Pull fetches the service dictionary. On success the snapshot is mirrored.
func (b *Bridge) Pull(ctx context.Context) (model.Dictionary, error) {
	d, err := b.remote.Dict(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyncUnavailable, err)
	}
	b.saveMirror(ctx, d)
	return d, nil
}

// Restore returns the last mirrored snapshot.
func (b *Bridge) Restore(ctx context.Context) (model.Dictionary, error) {
	if b.mirror == nil {
		return nil, ErrNoMirror
	}
	d, ok, err := b.mirror.LoadDictionary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary mirror: %w", err)
	}
	if !ok {
		return nil, ErrNoMirror
	}
	return d, nil
}

// Push queues d for upload and returns immediately. Failures are logged only.
func (b *Bridge) Push(d model.Dictionary) {
	snapshot := d.Clone()
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.Printf("dictionary push dropped: bridge closed")
		return
	}
	b.pending = snapshot
	b.queued = true
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) take() (model.Dictionary, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.queued {
		return nil, false
	}
	d := b.pending
	b.pending = nil
	b.queued = false
	return d, true
}

func (b *Bridge) deliver(ctx context.Context) {
	d, ok := b.take()
	if !ok {
		return
	}
	b.saveMirror(ctx, d)
	if err := b.remote.UpdateDict(ctx, d); err != nil {
		b.logger.Printf("dictionary push failed (not retried): %v", err)
	}
}

func (b *Bridge) saveMirror(ctx context.Context, d model.Dictionary) {
	if b.mirror == nil {
		return
	}
	if err := b.mirror.SaveDictionary(ctx, d); err != nil {
		b.logger.Printf("failed to mirror dictionary: %v", err)
	}
}
