package main

import (
	"hash"
	"io"

	"github.com/cespare/xxhash"

	"mooio/internal/composed"
	"mooio/internal/fileops"
	"mooio/internal/iomgr"
)

// copyOp copies src to dst one chunk at a time: read a chunk, write all of
// it (a short write is followed by another write of the rest), repeat until
// the read side hits end of file. It completes its handler once with the
// number of bytes written to dst. A write that moves nothing fails the copy
// with io.ErrShortWrite.
//
// With a non-zero align (direct I/O), the final partial chunk is padded with
// zeros up to align before it is written. The caller trims dst back to the
// reported length afterwards.
type copyOp struct {
	composed.Op[iomgr.Handler]

	svc 	iomgr.Service
	src		fileops.Handle
	dst		fileops.Handle
	buf		[]byte
	digest	hash.Hash64

	align	int
	off		uint64 // next read offset
	woff	uint64 // next write offset
	written	uint64
	pending	[]byte // read but not written yet
	writing	bool
	started	bool
	last	bool // padded tail written, nothing left to read
}

func startCopy(svc iomgr.Service, src, dst fileops.Handle, chunk, align int, h iomgr.Handler) *copyOp {
	o := &copyOp{
		Op:		composed.New(h),
		svc:	svc,
		src:	src,
		dst:	dst,
		align:	align,
		digest: xxhash.New(),
	}
	// the buffer comes from the caller's allocator, if it has one
	o.buf = o.AllocateHandlerMemory(chunk)
	o.svc.ReadAt(o.src, o.buf, o.off, o)
	return o
}

// Every step after the first read continues this operation.
func (o *copyOp) IsContinuation() bool {
	return o.started || o.Op.IsContinuation()
}

func (o *copyOp) Complete(n int, err error) {
	o.started = true

	if o.writing {
		if err != nil {
			o.done(err)
			return
		}
		if n == 0 && len(o.pending) > 0 {
			o.done(io.ErrShortWrite)
			return
		}
		o.written += uint64(n)
		o.woff += uint64(n)
		o.pending = o.pending[n:]
		if len(o.pending) > 0 {
			o.svc.WriteAt(o.dst, o.pending, o.woff, o)
			return
		}
		o.writing = false
		if o.last {
			o.done(nil)
			return
		}
		o.svc.ReadAt(o.src, o.buf, o.off, o)
		return
	}

	if fileops.IsEOF(err) {
		o.done(nil)
		return
	}
	if err != nil {
		o.done(err)
		return
	}

	o.digest.Write(o.buf[:n])
	o.woff = o.off
	o.off += uint64(n)
	o.pending = o.buf[:n]
	if o.align > 0 && n%o.align != 0 {
		padded := (n + o.align - 1) / o.align * o.align
		clear(o.buf[n:padded])
		o.pending = o.buf[:padded]
		// the next read would be unaligned
		o.last = true
	}
	o.writing = true
	o.svc.WriteAt(o.dst, o.pending, o.woff, o)
}

func (o *copyOp) done(err error) {
	o.DeallocateHandlerMemory(o.buf)
	o.buf = nil
	// padding doesn't count
	o.Handler.Complete(int(min(o.written, o.off)), err)
}

// xxhash of every byte read so far, only meaningful once the handler ran
func (o *copyOp) Sum64() uint64 {
	return o.digest.Sum64()
}
