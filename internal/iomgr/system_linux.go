//go:build linux

package iomgr

import (
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"github.com/aethne0/giouring"
	"github.com/eapache/queue"
	"github.com/negrel/assert"
	"golang.org/x/sys/unix"

	"mooio/internal/config"
	"mooio/internal/fileops"
	"mooio/internal/util"
)

// PERF:
// 1. read/write fixed
// 2. register buffer
// 3. register file
// The kernel core is pegged long before the device is on write-heavy loads, mostly
// completion interrupts, GUP on the buffers and fd table lookups. Registering the
// slab and the files would take care of the last two.

// IoMgr drives a single io_uring from one locked OS thread (the ringlord).
// Requests queue up in an unbounded pending queue, so submitting never blocks,
// not even from a handler running inline on the ring thread. The ringlord moves
// them into the ring while it has free slots.
type IoMgr struct {
	*engine
	ring 		*giouring.Ring
	cpu			int

	mu			sync.Mutex
	pending		*queue.Queue
	closed		bool
	wake		chan struct{}
	exited		chan struct{}

	// only touched by the ringlord
	slots		util.TicketQueue[*Op]
}

func createUring(cfg config.IO) (Service, error) {
	return CreateIoMgr(cfg)
}

func CreateIoMgr(cfg config.IO) (*IoMgr, error) {
	ring, err := giouring.CreateRing(cfg.RingEntries)
	if err != nil { return nil, err }

	m := &IoMgr {
		engine: 	newEngine("IoMgr", cfg.Direct),
		ring: 		ring,
		cpu:		cfg.RingCPU,
		pending: 	queue.New(),
		wake: 		make(chan struct{}, 1),
		exited:		make(chan struct{}),
		slots: 		util.CreateTicketQueue[*Op](int(cfg.RingEntries)),
	}
	m.log.Debug("CreateIoMgr", "entries", cfg.RingEntries, "cpu", cfg.RingCPU, "direct", cfg.Direct)

	go m.ringlord()
	return m, nil
}

func (m *IoMgr) submit(op *Op) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.fail(op, ErrClosed)
		return
	}
	m.pending.Add(op)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *IoMgr) ReadAt(fd fileops.Handle, buf []byte, off uint64, h Handler) {
	m.submit(m.newOp(OpRead, fd, buf, off, h))
}

func (m *IoMgr) WriteAt(fd fileops.Handle, buf []byte, off uint64, h Handler) {
	m.submit(m.newOp(OpWrite, fd, buf, off, h))
}

func (m *IoMgr) Sync(fd fileops.Handle, h Handler) {
	m.submit(m.newOp(OpSync, fd, nil, 0, h))
}

// Close lets every accepted op finish, tears the ring down and drains the
// completion executor. Must not be called from a completion handler.
func (m *IoMgr) Close() error {
	m.mu.Lock()
	already := m.closed
	m.closed = true
	m.mu.Unlock()

	if !already {
		select {
		case m.wake <- struct{}{}:
		default:
		}
	}
	<- m.exited
	m.exec.Close()
	return nil
}

func bufPtr(buf []byte) uintptr {
	if len(buf) == 0 { return 0 }
	return uintptr(unsafe.Pointer(&buf[0]))
}

// Returns false if the op was completed right away instead of being queued.
func (m *IoMgr) prepSQE(op *Op) bool {
	sqe := m.ring.GetSQE()
	if sqe == nil {
		// cannot happen while slots <= entries, but don't lose the op over it
		m.log.Error("no free SQE", "op", op)
		m.finish(op, 0, syscall.EBUSY)
		return false
	}

	switch op.Opcode {
	case OpNop:
		sqe.PrepareNop()
	case OpWrite:
		sqe.PrepareWrite(op.Fd, bufPtr(op.Buf), uint32(len(op.Buf)), op.Off)
	case OpRead:
		sqe.PrepareRead(op.Fd, bufPtr(op.Buf), uint32(len(op.Buf)), op.Off)
	case OpSync:
		sqe.PrepareFsync(op.Fd, 0)
	default:
		m.log.Warn("Invalid opcode", "opcode", op.Opcode)
		sqe.PrepareNop()
		sqe.UserData = noSlot
		m.finish(op, 0, unix.EINVAL)
		return true // the nop still occupies the SQE
	}

	ticket, ok := m.slots.Acq(op)
	if !ok {
		// collect checks for a free slot first, same story as above
		sqe.PrepareNop()
		sqe.UserData = noSlot
		m.finish(op, 0, syscall.EBUSY)
		return true
	}
	sqe.UserData = uint64(ticket)
	return true
}

// user data for SQEs that don't belong to an op
const noSlot = ^uint64(0)

// Take as many pending ops as there are free slots, returns SQEs prepared. The
// lock is never held across prepSQE: failing an op may run its handler inline,
// and that handler may submit.
func (m *IoMgr) collect() uint {
	var queued uint
	for m.slots.Free() > 0 {
		m.mu.Lock()
		if m.pending.Length() == 0 {
			m.mu.Unlock()
			break
		}
		op := m.pending.Remove().(*Op)
		m.mu.Unlock()

		if m.prepSQE(op) { queued++ }
	}
	return queued
}

// Blocks until there is something pending. false means closed and drained.
func (m *IoMgr) waitWork() bool {
	for {
		m.mu.Lock()
		n, closed := m.pending.Length(), m.closed
		m.mu.Unlock()
		if n > 0 { return true }
		if closed { return false }
		<- m.wake
	}
}

func (m *IoMgr) reap(cqe *giouring.CompletionQueueEvent) {
	defer m.ring.CQESeen(cqe)
	if cqe.UserData == noSlot { return }

	op := m.slots.Rel(int(cqe.UserData))
	if cqe.Res < 0 {
		m.finish(op, 0, syscall.Errno(-cqe.Res))
		return
	}
	m.finish(op, int(cqe.Res), nil)
}

// "Those who sow the good seed
// Shall surely reap"
func (m *IoMgr) ringlord() {
	defer close(m.exited)
	defer m.ring.QueueExit()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if m.cpu >= 0 {
		var cpuSet unix.CPUSet
		cpuSet.Zero()
		cpuSet.Set(m.cpu)
		err := unix.SchedSetaffinity(0, &cpuSet)
		if err != nil { m.log.Warn("Couldn't set core affinity for ring manager", "cpu", m.cpu, "err", err) }
	}

	var queued   uint = 0 // SQEs that we have "got" and prepared from the pending queue
	var inflight uint = 0 // SQEs that have been SUBMITTED

	// Three phases per turn:
	// 1. move pending ops into SQEs while there are free slots
	// 2. submit; if there's nothing new to submit, wait for at least one completion
	// 3. reap every CQE that's ready
	// Handlers with the continuation hint run right here in phase 3, and whatever
	// they submit gets picked up in the next turn's phase 1.
	for {
		// STAGE 1
		if inflight == 0 && queued == 0 {
			if !m.waitWork() { break }
		}
		queued += m.collect()

		// STAGE 2
		if queued > 0 || inflight > 0 {
			var submitted uint
			var err error
			if queued > 0 {
				submitted, err = m.ring.Submit()
			} else {
				submitted, err = m.ring.SubmitAndWait(1)
			}
			if err != nil && err != unix.ETIME && err != unix.EINTR && err != unix.EAGAIN {
				m.log.Error("Submit", "err", err)
			}
			assert.GreaterOrEqual(queued, submitted, "kernel took more SQEs than we queued")
			queued   -= submitted
			inflight += submitted
		}

		// STAGE 3
		for inflight > 0 {
			cqe, err := m.ring.PeekCQE()
			if err == unix.EAGAIN || err == unix.EINTR || err == unix.ETIME {
				break
			} else if err != nil {
				m.log.Error("Peek cqe fatal error", "err", err)
				panic("Something wrong with your IO_URING!")
			}

			if cqe == nil {
				m.log.Warn("cqe == nil but we didnt get an err (eagain)?")
				break
			}

			inflight--
			m.reap(cqe)
		}
	}
	m.log.Debug("ringlord exiting")
}
