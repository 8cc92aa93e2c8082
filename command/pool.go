package command

import "sync"

// shrinkThreshold bounds how much smaller a request can be than a pooled
// list's capacity before the list is considered a poor fit and a new,
// right-sized allocation is made instead. This mirrors pixman's
// region-reuse heuristic: reusing a far-oversized buffer wastes memory
// without saving the allocation it was meant to avoid.
const shrinkThreshold = 2

// Pool is a free list of over-allocated command Lists, avoiding the
// per-frame allocate/release churn of building a fresh command stream
// from scratch every frame.
type Pool struct {
	mu   sync.Mutex
	free []*List
}

// NewPool creates an empty command list pool.
func NewPool() *Pool {
	return &Pool{}
}

// Get returns a List with capacity for at least minCapacity commands,
// reusing a pooled allocation when one isn't more than shrinkThreshold
// times oversized, reallocating otherwise.
func (p *Pool) Get(minCapacity int) *List {
	p.mu.Lock()
	defer p.mu.Unlock()

	bestIdx := -1
	for i, l := range p.free {
		if cap(l.Cmds) >= minCapacity && cap(l.Cmds) <= minCapacity*shrinkThreshold {
			if bestIdx == -1 || cap(l.Cmds) < cap(p.free[bestIdx].Cmds) {
				bestIdx = i
			}
		}
	}

	if bestIdx >= 0 {
		l := p.free[bestIdx]
		p.free = append(p.free[:bestIdx], p.free[bestIdx+1:]...)
		l.Reset()
		return l
	}

	return NewList(minCapacity)
}

// Put returns a List to the pool for reuse, resetting it to zero length
// first. The caller must not use l again after calling Put.
func (p *Pool) Put(l *List) {
	if l == nil {
		return
	}
	l.Reset()
	p.mu.Lock()
	p.free = append(p.free, l)
	p.mu.Unlock()
}
