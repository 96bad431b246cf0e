package composed

// Op is the base of a composed operation: an asynchronous algorithm made of
// several steps that shows itself to the reactor as a single completion
// handler. Embed it, implement the reactor's completion method on the
// embedding type to drive the next step, and finish by completing Handler.
//
// Op forwards the allocation, continuation and invocation hooks to Handler,
// so whatever policy the caller attached to its handler keeps applying to
// every intermediate step. It does not forward anything else: an embedder
// that needs more (an associated executor, say) adds it itself.
//
//	type readAllOp struct {
//		composed.Op[iomgr.Handler]
//		svc  iomgr.Service
//		...
//	}
//
//	func (o *readAllOp) Complete(n int, err error) {
//		... issue the next read with o as the handler, or
//		o.Handler.Complete(total, err)
//	}
type Op[H any] struct {
	Handler H
}

func New[H any](handler H) Op[H] {
	return Op[H]{Handler: handler}
}

func (o *Op[H]) AllocateHandlerMemory(size int) []byte {
	return Allocate(o.Handler, size)
}

func (o *Op[H]) DeallocateHandlerMemory(mem []byte) {
	Deallocate(o.Handler, mem)
}

func (o *Op[H]) IsContinuation() bool {
	return IsContinuation(o.Handler)
}

func (o *Op[H]) InvokeHandler(fn func()) {
	Invoke(o.Handler, fn)
}
