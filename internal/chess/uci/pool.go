package uci

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
)

type PoolConfig struct {
	BinaryPath string
	// Capacity bounds the live engine processes per option set.
	Capacity int
}

// Pool hands out warm engine sessions, one bucket per distinct Options.
type Pool struct {
	binaryPath string
	capacity   int

	mu       sync.Mutex
	buckets  map[string]*sessionBucket
	sessions map[*Session]*sessionBucket
}

// PoolStats is a point-in-time view used for metrics.
type PoolStats struct {
	Live int
	Idle int
}

func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.BinaryPath == "" {
		return nil, fmt.Errorf("binary path required")
	}
	if _, err := os.Stat(cfg.BinaryPath); err != nil {
		return nil, fmt.Errorf("engine binary check: %w", err)
	}

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity()
	}

	return &Pool{
		binaryPath: cfg.BinaryPath,
		capacity:   capacity,
		buckets:    make(map[string]*sessionBucket),
		sessions:   make(map[*Session]*sessionBucket),
	}, nil
}

// Capacity is the per-bucket process limit.
func (p *Pool) Capacity() int { return p.capacity }

// Acquire returns an idle session for opt, starts a new one while under capacity,
// or waits for a release.
func (p *Pool) Acquire(ctx context.Context, opt Options) (*Session, error) {
	bucket := p.bucketFor(opt)

	for {
		if session, ok := p.takeIdle(ctx, bucket, false); ok {
			return session, nil
		}

		session, err := bucket.create(ctx)
		if err == nil {
			p.track(session, bucket)
			return session, nil
		}
		if !errors.Is(err, errBucketAtCapacity) {
			return nil, err
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if session, ok := p.takeIdle(ctx, bucket, true); ok {
			return session, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// takeIdle pulls one ready session from the bucket. With wait set it blocks until a
// session is released or ctx ends.
func (p *Pool) takeIdle(ctx context.Context, bucket *sessionBucket, wait bool) (*Session, bool) {
	var session *Session
	if wait {
		select {
		case session = <-bucket.idle:
		case <-ctx.Done():
			return nil, false
		}
	} else {
		select {
		case session = <-bucket.idle:
		default:
			return nil, false
		}
	}
	if session == nil {
		return nil, false
	}
	if err := session.EnsureReady(ctx); err != nil {
		bucket.discard(session)
		return nil, false
	}
	p.track(session, bucket)
	return session, true
}

// Release returns a session. A non-nil err means the session is suspect and is closed.
func (p *Pool) Release(session *Session, err error) {
	if session == nil {
		return
	}

	p.mu.Lock()
	bucket, ok := p.sessions[session]
	delete(p.sessions, session)
	p.mu.Unlock()

	if !ok {
		_ = session.Close()
		return
	}
	if err != nil || !bucket.put(session) {
		bucket.discard(session)
	}
}

func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	var st PoolStats
	for _, b := range p.buckets {
		b.mu.Lock()
		st.Live += b.total
		b.mu.Unlock()
		st.Idle += len(b.idle)
	}
	return st
}

// Close shuts down idle sessions. Sessions still checked out are closed on Release.
func (p *Pool) Close() error {
	p.mu.Lock()
	buckets := make([]*sessionBucket, 0, len(p.buckets))
	for _, b := range p.buckets {
		buckets = append(buckets, b)
	}
	p.sessions = make(map[*Session]*sessionBucket)
	p.mu.Unlock()

	var errs []error
	for _, bucket := range buckets {
		errs = append(errs, bucket.drain()...)
	}
	return errors.Join(errs...)
}

func (p *Pool) track(session *Session, bucket *sessionBucket) {
	p.mu.Lock()
	p.sessions[session] = bucket
	p.mu.Unlock()
}

func (p *Pool) bucketFor(opt Options) *sessionBucket {
	key := optionsKey(opt)
	p.mu.Lock()
	defer p.mu.Unlock()
	bucket, ok := p.buckets[key]
	if !ok {
		bucket = newSessionBucket(p.binaryPath, opt, p.capacity)
		p.buckets[key] = bucket
	}
	return bucket
}

type sessionBucket struct {
	opt        Options
	capacity   int
	binaryPath string

	mu    sync.Mutex
	total int
	idle  chan *Session
}

var errBucketAtCapacity = errors.New("session bucket at capacity")

func newSessionBucket(binaryPath string, opt Options, capacity int) *sessionBucket {
	if capacity <= 0 {
		capacity = 1
	}
	return &sessionBucket{
		opt:        opt,
		capacity:   capacity,
		binaryPath: binaryPath,
		idle:       make(chan *Session, capacity),
	}
}

func (b *sessionBucket) create(ctx context.Context) (*Session, error) {
	b.mu.Lock()
	if b.total >= b.capacity {
		b.mu.Unlock()
		return nil, errBucketAtCapacity
	}
	b.total++
	b.mu.Unlock()

	session, err := NewSession(ctx, b.binaryPath, b.opt)
	if err != nil {
		b.decrement()
		return nil, err
	}
	return session, nil
}

func (b *sessionBucket) put(session *Session) bool {
	select {
	case b.idle <- session:
		return true
	default:
		return false
	}
}

func (b *sessionBucket) discard(session *Session) {
	if session != nil {
		_ = session.Close()
	}
	b.decrement()
}

func (b *sessionBucket) drain() []error {
	var errs []error
	for {
		select {
		case session := <-b.idle:
			if session == nil {
				continue
			}
			if err := session.Close(); err != nil {
				errs = append(errs, err)
			}
			b.decrement()
		default:
			return errs
		}
	}
}

func (b *sessionBucket) decrement() {
	b.mu.Lock()
	if b.total > 0 {
		b.total--
	}
	b.mu.Unlock()
}

func optionsKey(opt Options) string {
	return fmt.Sprintf("thr=%d|hash=%d|multipv=%d", opt.Threads, opt.HashMB, opt.MultiPV)
}

func defaultCapacity() int {
	cpu := runtime.NumCPU()
	if cpu < 2 {
		return 2
	}
	if cpu > 4 {
		return 4
	}
	return cpu
}
