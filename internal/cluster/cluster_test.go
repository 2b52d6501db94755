package cluster

import (
	"strings"
	"testing"
	"time"

	"github.com/chittur/parallel-programming-language/internal/lang"
	"github.com/chittur/parallel-programming-language/internal/vm"
)

// collectWriter is a vm.Writer that records every value written, for tests
// that need to assert on a node's output. Run always serializes calls to it
// through cluster's own syncWriter, so it needs no locking of its own.
type collectWriter struct {
	ints []int32
}

func newCollectWriter() *collectWriter {
	return &collectWriter{}
}

func (w *collectWriter) WriteInt(v int32) error {
	w.ints = append(w.ints, v)
	return nil
}

func (w *collectWriter) WriteBool(bool) error { return nil }

// buildPipelineProgram hand-assembles:
//
//	{
//	    channel c;
//	    integer v;
//	    open(c);
//	    parallel producer();
//	    receive(c, v);
//	    write(v);
//
//	    producer() { send(99, c); }
//	}
//
// exercising a spawned node rendezvousing with the root node over a channel.
func buildPipelineProgram() []int32 {
	const (
		idxProgram   = 0
		idxVarC      = 2
		idxOpen      = 5
		idxInvoke    = 6
		idxParallel  = 9
		idxRecvChan  = 10
		idxRecvValue = 13
		idxRecvDest  = 14
		idxReceive   = 17
		idxWriteVal  = 18
		idxWriteV    = 21
		idxWriteOp   = 22
		idxEndProg   = 23
		idxEntryRec  = 24
		idxProcBody  = 26
	)
	code := make([]int32, 37)
	code[idxProgram], code[idxProgram+1] = int32(lang.OpProgram), 2
	code[idxVarC], code[idxVarC+1], code[idxVarC+2] = int32(lang.OpVariable), 0, 0
	code[idxOpen] = int32(lang.OpOpen)
	code[idxInvoke], code[idxInvoke+1], code[idxInvoke+2] = int32(lang.OpProcedureInvocation), 0, idxEntryRec
	code[idxParallel] = int32(lang.OpParallel)
	code[idxRecvChan], code[idxRecvChan+1], code[idxRecvChan+2] = int32(lang.OpVariable), 0, 0
	code[idxRecvValue] = int32(lang.OpValue)
	code[idxRecvDest], code[idxRecvDest+1], code[idxRecvDest+2] = int32(lang.OpVariable), 0, 1
	code[idxReceive] = int32(lang.OpReceive)
	code[idxWriteVal], code[idxWriteVal+1], code[idxWriteVal+2] = int32(lang.OpVariable), 0, 1
	code[idxWriteV] = int32(lang.OpValue)
	code[idxWriteOp] = int32(lang.OpWriteInteger)
	code[idxEndProg] = int32(lang.OpEndProgram)
	code[idxEntryRec] = idxProcBody
	code[idxEntryRec+1] = 0 // void, no parameters
	code[idxProcBody], code[idxProcBody+1] = int32(lang.OpProcedureBlock), 0
	code[idxProcBody+2], code[idxProcBody+3] = int32(lang.OpConstant), 99
	code[idxProcBody+4], code[idxProcBody+5], code[idxProcBody+6] = int32(lang.OpVariable), 1, 0
	code[idxProcBody+7] = int32(lang.OpValue)
	code[idxProcBody+8] = int32(lang.OpSend)
	code[idxProcBody+9], code[idxProcBody+10] = int32(lang.OpEndProcedureBlock), 0
	return code
}

func TestRunDeliversValueThroughChannelFromSpawnedNode(t *testing.T) {
	code := buildPipelineProgram()
	out := newCollectWriter()
	done := make(chan error, 1)
	go func() { done <- Run(code, Options{Output: out, Seed: 1}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not complete: likely a false deadlock or a stack-capacity regression")
	}

	if len(out.ints) != 1 || out.ints[0] != 99 {
		t.Fatalf("got %v, want [99]", out.ints)
	}
}

// buildDeadlockProgram hand-assembles a program whose only node blocks
// forever receiving on a channel nobody will ever send to:
//
//	{
//	    channel c;
//	    integer v;
//	    open(c);
//	    receive(c, v);
//	}
func buildDeadlockProgram() []int32 {
	const (
		idxProgram   = 0
		idxVarC      = 2
		idxOpen      = 5
		idxRecvChan  = 6
		idxRecvValue = 9
		idxRecvDest  = 10
		idxReceive   = 13
		idxEndProg   = 14
	)
	code := make([]int32, 15)
	code[idxProgram], code[idxProgram+1] = int32(lang.OpProgram), 2
	code[idxVarC], code[idxVarC+1], code[idxVarC+2] = int32(lang.OpVariable), 0, 0
	code[idxOpen] = int32(lang.OpOpen)
	code[idxRecvChan], code[idxRecvChan+1], code[idxRecvChan+2] = int32(lang.OpVariable), 0, 0
	code[idxRecvValue] = int32(lang.OpValue)
	code[idxRecvDest], code[idxRecvDest+1], code[idxRecvDest+2] = int32(lang.OpVariable), 0, 1
	code[idxReceive] = int32(lang.OpReceive)
	code[idxEndProg] = int32(lang.OpEndProgram)
	return code
}

func TestRunReportsDeadlock(t *testing.T) {
	code := buildDeadlockProgram()
	done := make(chan error, 1)
	go func() { done <- Run(code, Options{Seed: 1}) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected a deadlock error")
		}
		if !strings.Contains(err.Error(), "deadlock") {
			t.Fatalf("got %v, want a deadlock error", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not detect the deadlock in time")
	}
}

// This assertion is the file's only use of vm: it keeps the import live and
// checks that collectWriter satisfies vm.Writer.
var _ vm.Writer = (*collectWriter)(nil)
