// Asynchronous positional file I/O. A Service takes a request plus a
// completion Handler and calls the handler once the transfer is done. How
// and where the handler runs is up to the handler's hooks (see package
// composed): continuations run on the goroutine that saw the completion,
// everything else is posted to the completion executor.
package iomgr

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	c "mooio/internal"
	"mooio/internal/composed"
	"mooio/internal/config"
	"mooio/internal/fileops"
)

var (
	ErrClosed 		= errors.New("iomgr: closed")
	ErrBackend		= errors.New("iomgr: unknown backend")
)

// Handler receives the result of one asynchronous operation. n is the number
// of bytes transferred; reads of a non-empty buffer that hit the end of the
// file complete with fileops.ErrEOF.
type Handler interface {
	Complete(n int, err error)
}

type HandlerFunc func(n int, err error)

func (f HandlerFunc) Complete(n int, err error) { f(n, err) }

type Service interface {
	ReadAt(fd fileops.Handle, buf []byte, off uint64, h Handler)
	WriteAt(fd fileops.Handle, buf []byte, off uint64, h Handler)
	Sync(fd fileops.Handle, h Handler)
	Close() error
}

// New starts the backend cfg asks for.
func New(cfg config.IO) (Service, error) {
	switch cfg.Backend {
	case "pool":
		return CreatePool(cfg), nil
	case "uring":
		return createUring(cfg)
	}
	return nil, fmt.Errorf("%w: %q", ErrBackend, cfg.Backend)
}

type OpCode uint8
const (
	OpNop 	OpCode = iota
	OpWrite
	OpRead
	OpSync
)

func (o OpCode) String() string {
	switch o {
	case OpNop:		return "NOP"
	case OpWrite:	return "WRITE"
	case OpRead:	return "READ"
	case OpSync:	return "FSYNC"
	}
	return fmt.Sprintf("OpCode(%d)", uint8(o))
}

// Op is one request in flight. Ops are pooled, nothing outside this package
// holds on to one.
type Op struct {
	Opcode	OpCode
	Fd		fileops.Handle
	Buf		[]byte // what the kernel reads into / writes from
	Off		uint64

	user	[]byte // caller's buffer when Buf is a bounce buffer
	handler	Handler
}

// engine is the part both backends share: op pooling, direct I/O staging and
// completion delivery.
type engine struct {
	log 	*slog.Logger
	exec	*Executor
	direct	bool
	ops		sync.Pool
}

func newEngine(name string, direct bool) *engine {
	return &engine{
		log:	slog.With("src", name),
		exec:	NewExecutor(name+"-completions", 1),
		direct:	direct,
		ops:	sync.Pool{New: func() any { return new(Op) }},
	}
}

// Largest transfer per op. SQE lengths are 32 bit; longer buffers complete
// with a short count.
const maxRW = 1 << 30

func aligned(buf []byte) bool {
	return len(buf) == 0 || c.IsAligned(uint64(uintptr(unsafe.Pointer(&buf[0]))))
}

func (e *engine) newOp(code OpCode, fd fileops.Handle, buf []byte, off uint64, h Handler) *Op {
	if len(buf) > maxRW {
		buf = buf[:maxRW]
	}
	op := e.ops.Get().(*Op)
	op.Opcode = code
	op.Fd = fd
	op.Buf = buf
	op.Off = off
	op.handler = h

	// Direct I/O needs an aligned buffer address; lengths and offsets are the
	// caller's business and the kernel says EINVAL if they're off.
	if e.direct && (code == OpRead || code == OpWrite) && !aligned(buf) {
		bounce := composed.Allocate(h, len(buf))
		if code == OpWrite {
			copy(bounce, buf)
		}
		op.user = buf
		op.Buf = bounce[:len(buf)]
	}
	return op
}

func (e *engine) finish(op *Op, n int, err error) {
	if op.Opcode == OpRead && err == nil && n == 0 && len(op.Buf) != 0 {
		err = fileops.ErrEOF
	}
	if op.user != nil {
		if op.Opcode == OpRead && n > 0 {
			copy(op.user, op.Buf[:n])
		}
		composed.Deallocate(op.handler, op.Buf)
	}

	h := op.handler
	*op = Op{}
	e.ops.Put(op)

	e.deliver(h, n, err)
}

func (e *engine) deliver(h Handler, n int, err error) {
	run := func() {
		composed.Invoke(h, func() { h.Complete(n, err) })
	}
	if composed.IsContinuation(h) {
		run()
		return
	}
	if perr := e.exec.Post(run); perr != nil {
		// completion executor is gone, nothing left to queue on
		run()
	}
}

// fail completes op without it ever reaching the OS.
func (e *engine) fail(op *Op, err error) {
	e.log.Debug("op rejected", "opcode", op.Opcode, "err", err)
	e.finish(op, 0, err)
}
