package cascettecache

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// BufferPoolStats reports one size class's allocation counters.
type BufferPoolStats struct {
	Allocations uint64
	Reuses      uint64
	Misses      uint64
	PoolSize    int
}

// classPool is a capacity-bounded free list of *bytebufferpool.ByteBuffer for
// one SizeClass, backed by the valyala/bytebufferpool package. Buffers that
// don't fit in the bounded list (pool full) are handed to bytebufferpool's
// own package-level pool instead of being dropped, so nothing pooled is
// wasted even past this class's explicit cap.
type classPool struct {
	class       SizeClass
	slots       chan *bytebufferpool.ByteBuffer
	allocations atomic.Uint64
	reuses      atomic.Uint64
	misses      atomic.Uint64
}

func newClassPool(class SizeClass) *classPool {
	return &classPool{class: class, slots: make(chan *bytebufferpool.ByteBuffer, class.MaxPoolSize())}
}

func (p *classPool) get(size int) *bytebufferpool.ByteBuffer {
	p.allocations.Add(1)
	select {
	case bb := <-p.slots:
		p.reuses.Add(1)
		bb.Reset()
		return bb
	default:
	}
	p.misses.Add(1)
	bb := bytebufferpool.Get()
	if cap(bb.B) < size {
		bb.B = make([]byte, 0, size)
	}
	return bb
}

func (p *classPool) put(bb *bytebufferpool.ByteBuffer) {
	select {
	case p.slots <- bb:
	default:
		bytebufferpool.Put(bb)
	}
}

func (p *classPool) stats() BufferPoolStats {
	return BufferPoolStats{
		Allocations: p.allocations.Load(),
		Reuses:      p.reuses.Load(),
		Misses:      p.misses.Load(),
		PoolSize:    len(p.slots),
	}
}

// BufferPool is a size-classed pool of reusable byte buffers, sized per
// spec.md §4.10: Small ≤16 KiB, Medium ≤256 KiB, Large ≤8 MiB, Huge ≤32 MiB,
// each with its own retention cap. Allocations larger than the Huge class's
// buffer size bypass pooling entirely.
type BufferPool struct {
	classes [4]*classPool
}

// NewBufferPool creates an empty BufferPool.
func NewBufferPool() *BufferPool {
	return &BufferPool{classes: [4]*classPool{
		newClassPool(SizeSmall),
		newClassPool(SizeMedium),
		newClassPool(SizeLarge),
		newClassPool(SizeHuge),
	}}
}

// Get returns a buffer with at least size capacity, reused from the pool
// when available.
func (p *BufferPool) Get(size int) *bytebufferpool.ByteBuffer {
	if size > SizeHuge.BufferSize() {
		return &bytebufferpool.ByteBuffer{B: make([]byte, 0, size)}
	}
	return p.classes[ClassForSize(size)].get(size)
}

// Put returns buf to the pool for its capacity's size class. buf's content
// is not inspected; callers must not retain buf after calling Put.
func (p *BufferPool) Put(buf *bytebufferpool.ByteBuffer) {
	if cap(buf.B) > SizeHuge.BufferSize() {
		return
	}
	p.classes[ClassForSize(cap(buf.B))].put(buf)
}

// Stats returns the allocation counters for one size class.
func (p *BufferPool) Stats(class SizeClass) BufferPoolStats {
	return p.classes[class].stats()
}
