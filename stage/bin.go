package stage

import (
	"cmp"
	"slices"

	"github.com/gogpu/glstate/state"
)

// Drawable issues the draw calls of one piece of geometry.
type Drawable interface {
	Draw(s *state.State)
}

// DrawFunc adapts a function to Drawable.
type DrawFunc func(s *state.State)

func (f DrawFunc) Draw(s *state.State) { f(s) }

// RenderLeaf is one drawable with its merged state and transforms.
type RenderLeaf struct {
	StateSet   *state.StateSet
	Projection *state.Matrix
	ModelView  *state.Matrix
	Drawable   Drawable
	// Depth is the eye-space distance used by back-to-front sorting.
	Depth float32
	// Dynamic leaves count down the State's dynamic object count once
	// drawn.
	Dynamic bool
}

// SortMode orders a bin's leaves.
type SortMode uint8

const (
	// SortByState groups leaves sharing a StateSet to cut state changes.
	SortByState SortMode = iota
	// SortBackToFront draws the farthest leaves first, for blending.
	SortBackToFront
	// SortNone keeps insertion order.
	SortNone
)

// RenderBin is a sortable list of leaves plus nested bins drawn before
// (negative number) or after (positive number) them.
type RenderBin struct {
	Mode SortMode

	leaves   []*RenderLeaf
	children map[int]*RenderBin
	states   map[*state.StateSet]int
}

// Add appends a leaf.
func (b *RenderBin) Add(l *RenderLeaf) { b.leaves = append(b.leaves, l) }

// Leaves returns the leaves in draw order once Sort has run.
func (b *RenderBin) Leaves() []*RenderLeaf { return b.leaves }

// Child returns the nested bin with the given number, creating it.
func (b *RenderBin) Child(num int) *RenderBin {
	if b.children == nil {
		b.children = make(map[int]*RenderBin)
	}
	c, ok := b.children[num]
	if !ok {
		c = &RenderBin{}
		b.children[num] = c
	}
	return c
}

// Reset drops every leaf and nested bin.
func (b *RenderBin) Reset() {
	clear(b.leaves)
	b.leaves = b.leaves[:0]
	b.children = nil
	b.states = nil
}

// Sort orders the leaves of b and every nested bin.
func (b *RenderBin) Sort() {
	for _, c := range b.children {
		c.Sort()
	}
	switch b.Mode {
	case SortBackToFront:
		slices.SortStableFunc(b.leaves, func(x, y *RenderLeaf) int {
			return cmp.Compare(y.Depth, x.Depth)
		})
	case SortByState:
		// first-seen order of each StateSet
		if b.states == nil {
			b.states = make(map[*state.StateSet]int)
		}
		clear(b.states)
		for _, l := range b.leaves {
			if _, ok := b.states[l.StateSet]; !ok {
				b.states[l.StateSet] = len(b.states)
			}
		}
		slices.SortStableFunc(b.leaves, func(x, y *RenderLeaf) int {
			return cmp.Compare(b.states[x.StateSet], b.states[y.StateSet])
		})
	}
}

// Draw draws nested bins numbered below zero, then the leaves, then the
// remaining nested bins. It returns the number of leaves drawn.
func (b *RenderBin) Draw(s *state.State) int {
	nums := make([]int, 0, len(b.children))
	for n := range b.children {
		nums = append(nums, n)
	}
	slices.Sort(nums)

	drawn := 0
	i := 0
	for ; i < len(nums) && nums[i] < 0; i++ {
		drawn += b.children[nums[i]].Draw(s)
	}
	for _, l := range b.leaves {
		drawLeaf(s, l)
		drawn++
	}
	for ; i < len(nums); i++ {
		drawn += b.children[nums[i]].Draw(s)
	}
	return drawn
}

func drawLeaf(s *state.State, l *RenderLeaf) {
	if l.Projection != nil {
		s.ApplyProjectionMatrix(l.Projection)
	}
	if l.ModelView != nil {
		s.ApplyModelViewMatrix(l.ModelView)
	}
	if l.StateSet != nil {
		s.ApplyStateSet(l.StateSet)
	} else {
		s.Apply()
	}
	if l.Drawable != nil {
		l.Drawable.Draw(s)
	}
	if l.Dynamic {
		s.DecrementDynamicObjectCount()
	}
}
