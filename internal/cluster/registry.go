package cluster

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// ErrDeadlock is the cause a run is cancelled with when every live node is
// blocked on a channel operation and none can make progress.
var ErrDeadlock = errors.New("cluster: deadlock, all nodes blocked on channel operations")

// deadlockPollInterval is how often the watchdog samples running/blocked
// node counts. deadlockStableRounds is how many consecutive samples must
// agree before a stall is believed real rather than the ordinary moment two
// sides of a rendezvous are both mid-call to Send/Receive but about to pair
// up (spec.md §4.7: only a node permanently stuck is a deadlock).
const (
	deadlockPollInterval = 2 * time.Millisecond
	deadlockStableRounds = 4
)

// Registry is a synchronous rendezvous point keyed by integer handle: the
// cluster's implementation of vm.Channels. A Send blocks until a matching
// Receive is ready, and vice versa, exactly as spec.md §6.2 describes
// "send"/"receive".
type Registry struct {
	mu    sync.Mutex
	next  int32
	chans map[int32]chan int32

	ctx    context.Context
	cancel context.CancelCauseFunc

	running int32
	blocked int32
}

// NewRegistry returns a Registry whose blocking operations unblock with
// context.Cause(ctx) once cancel is called, either by errgroup on a node's
// first error or by the registry's own deadlock watchdog. The watchdog runs
// for the lifetime of ctx; the caller is expected to cancel ctx itself once
// the run finishes normally, so the watchdog goroutine doesn't leak.
func NewRegistry(ctx context.Context, cancel context.CancelCauseFunc) *Registry {
	r := &Registry{
		chans:  make(map[int32]chan int32),
		ctx:    ctx,
		cancel: cancel,
	}
	go r.watchForDeadlock()
	return r
}

// watchForDeadlock polls the running/blocked counts rather than declaring a
// deadlock the instant they meet: two nodes completing opposite ends of the
// same rendezvous both pass through "blocked" a moment before their
// channel send/receive actually pairs up, and checking synchronously at
// that instant would race the real rendezvous and cancel a perfectly live
// program. Requiring the stalled condition to hold for several consecutive
// polls filters that out while still catching a genuine, permanent stall
// quickly.
func (r *Registry) watchForDeadlock() {
	ticker := time.NewTicker(deadlockPollInterval)
	defer ticker.Stop()
	stable := 0
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			running := atomic.LoadInt32(&r.running)
			blocked := atomic.LoadInt32(&r.blocked)
			if running > 0 && blocked >= running {
				stable++
				if stable >= deadlockStableRounds {
					r.cancel(ErrDeadlock)
					return
				}
			} else {
				stable = 0
			}
		}
	}
}

// Open allocates a new unbuffered channel and returns its handle.
func (r *Registry) Open() int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.next
	r.next++
	r.chans[h] = make(chan int32)
	return h
}

func (r *Registry) chanFor(handle int32) chan int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.chans[handle]
	if !ok {
		// A handle that was never opened behaves as a channel nobody will
		// ever use the other end of: it blocks like any other, and the
		// deadlock watchdog still catches a node stuck on it.
		ch = make(chan int32)
		r.chans[handle] = ch
	}
	return ch
}

// Send blocks until a Receive on the same handle accepts v, or the run is
// cancelled.
func (r *Registry) Send(handle int32, v int32) error {
	ch := r.chanFor(handle)
	r.enterBlocked()
	defer r.exitBlocked()
	select {
	case ch <- v:
		return nil
	case <-r.ctx.Done():
		return context.Cause(r.ctx)
	}
}

// Receive blocks until a Send on the same handle offers a value, or the run
// is cancelled.
func (r *Registry) Receive(handle int32) (int32, error) {
	ch := r.chanFor(handle)
	r.enterBlocked()
	defer r.exitBlocked()
	select {
	case v := <-ch:
		return v, nil
	case <-r.ctx.Done():
		return 0, context.Cause(r.ctx)
	}
}

// NodeStarted records a new live node, for deadlock accounting.
func (r *Registry) NodeStarted() {
	atomic.AddInt32(&r.running, 1)
}

// NodeFinished records a node's exit, for deadlock accounting.
func (r *Registry) NodeFinished() {
	atomic.AddInt32(&r.running, -1)
}

func (r *Registry) enterBlocked() {
	atomic.AddInt32(&r.blocked, 1)
}

func (r *Registry) exitBlocked() {
	atomic.AddInt32(&r.blocked, -1)
}
