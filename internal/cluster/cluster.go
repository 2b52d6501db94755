package cluster

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chittur/parallel-programming-language/internal/vm"
)

// Options configures a cluster run. Input and Output are shared by every
// node spawned during the run (wrapped so concurrent writes from multiple
// nodes don't interleave mid-line); DataSize and Seed apply per node, with
// each spawned node's seed derived from Seed and its spawn order so a run is
// reproducible across repeated executions with the same seed.
type Options struct {
	DataSize int
	Input    vm.Reader
	Output   vm.Writer
	Seed     int64
}

// Run executes code as a cluster of nodes rooted at the program itself,
// blocking until the root node and every node it (transitively) spawns via
// "parallel" have finished, or one of them fails.
func Run(code []int32, opts Options) error {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	g, gctx := errgroup.WithContext(ctx)
	go func() {
		<-gctx.Done()
		cancel(context.Cause(gctx))
	}()

	reg := NewRegistry(ctx, cancel)
	out := &syncWriter{w: opts.Output}

	sp := &spawner{
		code: code,
		reg:  reg,
		out:  out,
		in:   opts.Input,
		opts: opts,
		g:    g,
	}

	reg.NodeStarted()
	root, err := vm.New(code,
		vm.WithInput(opts.Input),
		vm.WithOutput(out),
		vm.WithChannels(reg),
		vm.WithSpawner(sp),
		vm.RandSeed(opts.Seed),
		vm.DataSize(dataSizeOrDefault(opts.DataSize)),
	)
	if err != nil {
		reg.NodeFinished()
		return err
	}
	g.Go(func() error {
		defer reg.NodeFinished()
		return root.Run()
	})

	return g.Wait()
}

func dataSizeOrDefault(n int) int {
	if n <= 0 {
		return 1 << 16
	}
	return n
}

// spawner implements vm.Spawner: every "parallel" invocation becomes one
// more goroutine in the same errgroup that supervises the root node, so a
// fatal error anywhere in the cluster cancels every node via gctx.
type spawner struct {
	code []int32
	reg  *Registry
	out  vm.Writer
	in   vm.Reader
	opts Options

	g *errgroup.Group

	mu       sync.Mutex
	spawnSeq int64
}

func (s *spawner) Spawn(entry int, data []int32, base, top int) {
	s.mu.Lock()
	s.spawnSeq++
	seed := s.opts.Seed + s.spawnSeq
	s.mu.Unlock()

	s.reg.NodeStarted()
	s.g.Go(func() error {
		defer s.reg.NodeFinished()
		node, err := vm.NewNode(s.code, data, base, top, entry,
			vm.WithInput(s.in),
			vm.WithOutput(s.out),
			vm.WithChannels(s.reg),
			vm.WithSpawner(s),
			vm.RandSeed(seed),
		)
		if err != nil {
			return err
		}
		return node.Run()
	})
}

// syncWriter serializes WriteInt/WriteBool calls from concurrent nodes
// against a single underlying vm.Writer, so two nodes printing at once
// never interleave mid-value.
type syncWriter struct {
	mu sync.Mutex
	w  vm.Writer
}

func (s *syncWriter) WriteInt(v int32) error {
	if s.w == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.WriteInt(v)
}

func (s *syncWriter) WriteBool(v bool) error {
	if s.w == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.WriteBool(v)
}
