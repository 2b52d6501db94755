// Package cluster runs a compiled program as a set of independent nodes: one
// per "parallel" invocation encountered at runtime, plus the root program
// itself (spec.md §5). Nodes share nothing but a read-only code image and a
// channel registry; internal/vm.Machine never knows cluster exists, since it
// only ever talks to the vm.Channels and vm.Spawner interfaces this package
// implements.
//
// Node lifetime is supervised with golang.org/x/sync/errgroup, the same
// pattern the teacher reaches for whenever a set of goroutines must all
// succeed or the whole run aborts: the first node to return a non-nil error
// cancels every other node's context, and Run waits for all of them to
// unwind before reporting that error back to the caller.
//
// A program that deadlocks — every live node permanently blocked inside
// Send or Receive, none of them able to make progress — would otherwise
// hang errgroup.Wait forever. Registry tracks how many nodes are alive and
// how many are currently blocked on a channel operation, and a background
// watchdog polls the two counts: when they stay equal across several
// consecutive polls, it cancels the run with a deadlock error instead of
// waiting on a rendezvous nobody is left to complete. The polling, rather
// than an immediate check, exists because two nodes completing opposite
// ends of the same rendezvous are both transiently "blocked" a moment
// before their Send and Receive actually pair up.
package cluster
