package stage_test

import (
	"slices"
	"testing"

	"github.com/gogpu/glstate/gl/gltest"
	"github.com/gogpu/glstate/stage"
	"github.com/gogpu/glstate/state"
)

func TestRenderBinSort(t *testing.T) {
	a, b := state.NewStateSet(), state.NewStateSet()
	tests := []struct {
		name string
		mode stage.SortMode
		want []int
	}{
		{"by state", stage.SortByState, []int{0, 2, 1, 3}},
		{"back to front", stage.SortBackToFront, []int{3, 1, 2, 0}},
		{"none", stage.SortNone, []int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sets := []*state.StateSet{a, b, a, b}
			depths := []float32{1, 3, 2, 4}
			var bin stage.RenderBin
			bin.Mode = tt.mode
			leaves := make(map[*stage.RenderLeaf]int)
			for i := range sets {
				l := &stage.RenderLeaf{StateSet: sets[i], Depth: depths[i]}
				leaves[l] = i
				bin.Add(l)
			}
			bin.Sort()
			var got []int
			for _, l := range bin.Leaves() {
				got = append(got, leaves[l])
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderBinDrawOrder(t *testing.T) {
	d := gltest.New()
	st := newState(t, d)
	var log []string
	leaf := func(name string) *stage.RenderLeaf {
		return &stage.RenderLeaf{Drawable: stage.DrawFunc(func(*state.State) { log = append(log, name) })}
	}

	var bin stage.RenderBin
	bin.Add(leaf("main"))
	bin.Child(10).Add(leaf("after"))
	bin.Child(-5).Add(leaf("first"))
	bin.Child(-1).Add(leaf("second"))
	bin.Child(1).Add(leaf("next"))

	if n := bin.Draw(st); n != 5 {
		t.Errorf("Draw() = %d, want 5", n)
	}
	want := []string{"first", "second", "main", "next", "after"}
	if !slices.Equal(log, want) {
		t.Errorf("draw order = %v, want %v", log, want)
	}

	bin.Reset()
	log = nil
	if n := bin.Draw(st); n != 0 || len(log) != 0 {
		t.Errorf("Draw() after Reset = %d, %v", n, log)
	}
}
