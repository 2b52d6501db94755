// Package vm interprets the flat intermediate code internal/parser emits:
// a display-less stack machine whose activation records are threaded by
// static and dynamic links rather than addressed through a display array
// (spec.md §3, §5, adapted from the teacher's vm.Instance).
//
// Activation records
//
// Every frame (the program body, and every procedure call) is a
// contiguous run of cells in the single data store S:
//
//	S[B+0] = static link  (base of the lexically enclosing frame)
//	S[B+1] = dynamic link (base of the calling frame)
//	S[B+2] = return address
//	S[B+3:B+3+n] = the frame's own declared objects, in displacement order
//	above that: the temporary evaluation stack, growing toward higher
//	addresses as T increases
//
// headerSize (3) is added to every Variable/ReferenceParameter address
// computation; Variable/ReferenceParameter's L operand is not an absolute
// lexical level but a hop count — "walk L static links from the currently
// executing frame" — shared by ProcedureInvocation's own level operand,
// which walks from the *caller's* frame to find the callee's static
// parent.
//
// Calling convention
//
// ProcedureInvocation's second operand A is not the entry address itself
// but the address of a two-cell record built by the compiler:
// code[A] holds the resolved entry address (the address of the callee's
// ProcedureBlock instruction); code[A+1] holds its encoded parameter
// size — the byte count of ordinary parameters if non-negative, or
// -(count+1) when the procedure also has a return parameter (the sign
// bit doubles as the "this is a function" flag, since a plain byte count
// can't otherwise be told apart from "no return value").
//
// The caller pushes, in order: a placeholder return-value cell if the
// callee is a function, then each argument (a value, or an address for a
// reference parameter) — this whole block occupies exactly the callee's
// parameter slots once the frame exists. ProcedureInvocation then:
//
//  1. walks the static-link chain from its own (caller's) frame to find
//     the callee's static parent, before B changes;
//  2. lets lo be the position of the first already-pushed argument cell
//     (or, for a parameterless call, T+1) and shifts those cells up by
//     headerSize, in place, to make room for the header (by headerSize+1
//     for a function, so displacement 0 stays free for the return
//     parameter);
//  3. writes the static link, the dynamic link (the caller's own B) and
//     the return address (the instruction after ProcedureInvocation, or
//     after a trailing Parallel marker) into the vacated cells at lo;
//  4. sets B = lo and P = the entry address.
//
// EndProcedureBlock's teardown collapses the whole frame back to below
// where it started: T is reset to B-1 (discarding the header, every
// parameter and every local and temporary cell above them). If the
// procedure has a return parameter, its value (which lived at
// displacement 0, S[B+headerSize]) is copied down into S[B-1] — the
// placeholder cell the caller reserved before pushing arguments — so it
// becomes the single surviving cell the caller's expression evaluation
// consumes. A void procedure's return also leaves T at B-1, with nothing
// meaningful there: the caller never reserved a placeholder for it.
//
// Parallel nodes
//
// "parallel" compiles exactly like a normal call, with one extra
// Parallel opcode emitted right after ProcedureInvocation (spec.md §9).
// ProcedureInvocation's handler peeks at the instruction immediately
// following its own operands; if it is Parallel, it performs the same
// frame-shift-and-header-write preparation described above against a
// freshly allocated data store for a new node (rather than the caller's
// own S) sized the same as the spawning machine's own store, not trimmed to
// fit only the initial record, since the node's body still has locals,
// temporaries and calls of its own ahead of it. It starts that node's P at
// the entry address and hands the store, its base and its current top to
// the cluster runtime to execute independently, while the parent simply
// advances past both instructions without blocking.
package vm
