package layout

import (
	"fmt"

	"github.com/gogpu/xcompositor/command"
	"github.com/gogpu/xcompositor/geom"
	"github.com/gogpu/xcompositor/model"
)

// indexEntry is one entry of the cross-frame layer index: the rank a
// given key currently occupies in the most recently appended layout.
type indexEntry struct {
	rank int
}

// Manager is a ring buffer of max_buffer_age+1 Layouts plus the hash
// index used to align layers across frames by stable identity. Layouts
// and their Commands lists are owned by the Manager and reused frame to
// frame; callers must not retain a *Layout past the next AppendLayout.
type Manager struct {
	ring         []*Layout
	current      int // ring index of the most recently appended layout
	appended     int // number of layouts ever appended, capped informationally
	maxBufferAge int
	index        map[model.Key]indexEntry
	pool         *command.Pool
}

// NewManager allocates a ring of maxBufferAge+1 layouts up front.
func NewManager(maxBufferAge int) *Manager {
	if maxBufferAge < 0 {
		maxBufferAge = 0
	}
	ring := make([]*Layout, maxBufferAge+1)
	for i := range ring {
		ring[i] = &Layout{Commands: command.NewList(64)}
	}
	return &Manager{
		ring:         ring,
		current:      0,
		maxBufferAge: maxBufferAge,
		index:        make(map[model.Key]indexEntry),
		pool:         command.NewPool(),
	}
}

// MaxBufferAge returns the ring's configured maximum buffer age.
func (m *Manager) MaxBufferAge() int { return m.maxBufferAge }

// Pool returns the command list pool backing this manager's layouts, so
// the command builder can recycle lists through the same free list.
func (m *Manager) Pool() *command.Pool { return m.pool }

// Layout returns the layout `age` frames ago (age 0 is the layout most
// recently appended). Returns an error if age exceeds the ring's
// capacity — a caller programming error per the invalid-layout-age
// taxonomy.
func (m *Manager) Layout(age int) (*Layout, error) {
	if age < 0 || age >= len(m.ring) {
		return nil, fmt.Errorf("layout: invalid age %d (max buffer age %d)", age, m.maxBufferAge)
	}
	idx := m.current - age
	idx %= len(m.ring)
	if idx < 0 {
		idx += len(m.ring)
	}
	return m.ring[idx], nil
}

// AppendLayout snapshots wm's current stacking order into a new layout,
// advancing the ring and fixing up the cross-frame index.
//
// For each window bottom to top: decide visibility, snapshot it into a
// Layer, and look it up in the cross-frame index. On a hit, the
// previous layout's layer has its NextRank set to the new layer's rank,
// and the new layer's PrevRank is set to the previous layer's rank.
//
// After appending, index entries whose previous layer was not matched
// this frame (NextRank still noRank) are dropped; surviving entries are
// repointed to the new layer's rank; newly appeared layers are inserted.
func (m *Manager) AppendLayout(wm model.WindowModel) *Layout {
	w, h := wm.ScreenSize()
	screen := geom.R(0, 0, w, h)

	prevIdx := m.current
	prevLayout := m.ring[prevIdx]

	nextIdx := (m.current + 1) % len(m.ring)
	newLayout := m.ring[nextIdx]
	newLayout.ScreenW, newLayout.ScreenH = w, h
	newLayout.RootImageGeneration = wm.RootImageGeneration()
	newLayout.Layers = newLayout.Layers[:0]

	matchedPrevRanks := make(map[int]struct{})

	for _, info := range wm.StackingOrder() {
		info := info
		if !visible(&info, screen) {
			continue
		}
		l := newLayer(&info)
		if region, ok := wm.MonitorRegion(info.Monitor); ok {
			l.MonitorRegion, l.HasMonitorRegion = region, true
		}

		if entry, ok := m.index[l.Key]; ok && entry.rank < len(prevLayout.Layers) && prevLayout.Layers[entry.rank].Key == l.Key {
			newRank := len(newLayout.Layers)
			prevLayout.Layers[entry.rank].NextRank = newRank
			l.PrevRank = entry.rank
			matchedPrevRanks[entry.rank] = struct{}{}
		}

		newLayout.Layers = append(newLayout.Layers, l)
	}

	// Layers in prevLayout not matched this frame keep NextRank == noRank
	// from their own append; nothing further to do for them here, but
	// any stale index entries pointing at them must be dropped below.
	for i := range prevLayout.Layers {
		if _, ok := matchedPrevRanks[i]; !ok {
			prevLayout.Layers[i].NextRank = noRank
		}
	}

	for key, entry := range m.index {
		if entry.rank >= len(prevLayout.Layers) || prevLayout.Layers[entry.rank].Key != key {
			delete(m.index, key)
			continue
		}
		if next := prevLayout.Layers[entry.rank].NextRank; next == noRank {
			delete(m.index, key)
		} else {
			m.index[key] = indexEntry{rank: next}
		}
	}
	for rank, l := range newLayout.Layers {
		if _, ok := m.index[l.Key]; !ok {
			m.index[l.Key] = indexEntry{rank: rank}
		}
	}

	m.current = nextIdx
	m.appended++
	return newLayout
}

// LayerPrevRank follows PrevRank links backward `age` steps from rank i
// in the current layout, returning -1 if the chain breaks before then.
func (m *Manager) LayerPrevRank(age, i int) int {
	rank := i
	for step := 0; step < age; step++ {
		layout, err := m.Layout(step)
		if err != nil || rank < 0 || rank >= len(layout.Layers) {
			return noRank
		}
		rank = layout.Layers[rank].PrevRank
		if rank == noRank {
			return noRank
		}
	}
	return rank
}

// LayerNextRank follows NextRank links forward `age` steps starting from
// rank i in the layout `age` frames ago, returning -1 if the chain
// breaks before reaching the current layout.
func (m *Manager) LayerNextRank(age, i int) int {
	rank := i
	for step := age; step > 0; step-- {
		layout, err := m.Layout(step)
		if err != nil || rank < 0 || rank >= len(layout.Layers) {
			return noRank
		}
		rank = layout.Layers[rank].NextRank
		if rank == noRank {
			return noRank
		}
	}
	return rank
}

// CollectWindowDamage unions the Damaged region of layer i in the
// current layout and its age-1 predecessors into out. It returns false
// if the predecessor chain breaks before `age` steps, in which case the
// caller must fall back to full-screen damage rather than trust out.
func (m *Manager) CollectWindowDamage(i, age int, out *geom.Region) bool {
	rank := i
	for step := 0; step < age; step++ {
		layout, err := m.Layout(step)
		if err != nil || rank < 0 || rank >= len(layout.Layers) {
			return false
		}
		*out = out.Union(layout.Layers[rank].Damaged)
		rank = layout.Layers[rank].PrevRank
		if rank == noRank && step != age-1 {
			return false
		}
	}
	return true
}
