package vm

// Channels is the one piece of state a Machine shares with every other node
// spawned from the same program: the synchronous rendezvous registry
// backing "open"/"send"/"receive" (spec.md §5, §6.2). A Machine never
// touches another node's data store directly; channels are the only
// crossing point, which is what internal/cluster provides an implementation
// of.
type Channels interface {
	// Open allocates a new channel and returns its handle.
	Open() int32
	// Send blocks until a Receive on the same handle is ready to accept v,
	// or the run is cancelled.
	Send(handle int32, v int32) error
	// Receive blocks until a Send on the same handle offers a value, or the
	// run is cancelled.
	Receive(handle int32) (int32, error)
}

// Spawner hands off a freshly prepared child frame to run as an independent
// node (spec.md §5's "parallel"). data is a data store already containing
// the copied visible environment plus the new call's activation record
// (built the same way an in-place call would build it), sized with room for
// the node's own subsequent pushes rather than trimmed to fit only that
// initial record; top is the highest slot actually in use, and entry is
// where the child's P should start.
type Spawner interface {
	Spawn(entry int, data []int32, base, top int)
}
