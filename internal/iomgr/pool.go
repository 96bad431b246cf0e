package iomgr

import (
	"mooio/internal/config"
	"mooio/internal/fileops"
)

// Pool runs the blocking fileops calls on a fixed set of worker goroutines.
// Works on every platform fileops supports; it's the fallback when io_uring
// isn't around.
type Pool struct {
	*engine
	workers		*Executor
}

func CreatePool(cfg config.IO) *Pool {
	p := &Pool{
		engine:		newEngine("Pool", cfg.Direct),
		workers:	NewExecutor("pool-workers", cfg.Workers),
	}
	p.log.Debug("CreatePool", "workers", cfg.Workers, "direct", cfg.Direct)
	return p
}

func (p *Pool) submit(op *Op) {
	err := p.workers.Post(func() {
		n, err := p.perform(op)
		p.finish(op, n, err)
	})
	if err != nil {
		p.fail(op, err)
	}
}

func (p *Pool) perform(op *Op) (int, error) {
	switch op.Opcode {
	case OpRead:
		return fileops.Pread(op.Fd, op.Buf, op.Off)
	case OpWrite:
		return fileops.Pwrite(op.Fd, op.Buf, op.Off)
	case OpSync:
		return 0, fileops.Sync(op.Fd)
	case OpNop:
		return 0, nil
	}
	p.log.Warn("Invalid opcode", "opcode", op.Opcode)
	return 0, fileops.ErrInvalidArgument
}

func (p *Pool) ReadAt(fd fileops.Handle, buf []byte, off uint64, h Handler) {
	p.submit(p.newOp(OpRead, fd, buf, off, h))
}

func (p *Pool) WriteAt(fd fileops.Handle, buf []byte, off uint64, h Handler) {
	p.submit(p.newOp(OpWrite, fd, buf, off, h))
}

func (p *Pool) Sync(fd fileops.Handle, h Handler) {
	p.submit(p.newOp(OpSync, fd, nil, 0, h))
}

// Close finishes every queued op, then every queued completion.
func (p *Pool) Close() error {
	p.workers.Close()
	p.exec.Close()
	return nil
}
