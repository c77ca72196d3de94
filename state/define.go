package state

import (
	"slices"
	"strings"
)

// defineStack is the tracked state of one shader define.
type defineStack struct {
	entries []defineEntry
}

func (ds *defineStack) push(e defineEntry) {
	if n := len(ds.entries); n > 0 && ds.entries[n-1].flags.overrides() && !e.flags.protected() {
		ds.entries = append(ds.entries, ds.entries[n-1])
		return
	}
	ds.entries = append(ds.entries, e)
}

func (ds *defineStack) pop() bool {
	if len(ds.entries) == 0 {
		return false
	}
	ds.entries = ds.entries[:len(ds.entries)-1]
	return true
}

// defineSnapshot records what a define looked like when the cached string
// was built.
type defineSnapshot struct {
	depth int
	value string
	on    bool
}

// defineMap flattens the define stacks into a #define block.
type defineMap struct {
	stacks   map[string]*defineStack
	changed  bool
	snapshot map[string]defineSnapshot
	current  []string // sorted names of defines currently on
	cached   string
	// recomputes counts snapshot comparisons, for diagnostics.
	recomputes int
}

func newDefineMap() defineMap {
	return defineMap{
		stacks:   make(map[string]*defineStack),
		snapshot: make(map[string]defineSnapshot),
	}
}

func (dm *defineMap) stack(name string) *defineStack {
	ds, ok := dm.stacks[name]
	if !ok {
		ds = &defineStack{}
		dm.stacks[name] = ds
	}
	return ds
}

func (dm *defineMap) pushList(defs map[string]defineEntry) {
	if len(defs) == 0 {
		return
	}
	for name, e := range defs {
		dm.stack(name).push(e)
	}
	dm.changed = true
}

func (dm *defineMap) popList(defs map[string]defineEntry) {
	if len(defs) == 0 {
		return
	}
	for name := range defs {
		if ds, ok := dm.stacks[name]; ok {
			ds.pop()
		}
	}
	dm.changed = true
}

func (dm *defineMap) clear() {
	clear(dm.stacks)
	dm.changed = true
}

// update compares the live stacks with the last snapshot and rebuilds the
// cached string only when they differ. It reports whether the string
// changed.
func (dm *defineMap) update() bool {
	if !dm.changed {
		return false
	}
	dm.changed = false
	dm.recomputes++

	live := make(map[string]defineSnapshot, len(dm.stacks))
	for name, ds := range dm.stacks {
		if len(ds.entries) == 0 {
			continue
		}
		top := ds.entries[len(ds.entries)-1]
		live[name] = defineSnapshot{depth: len(ds.entries), value: top.value, on: top.flags.Enabled()}
	}
	if sameSnapshot(live, dm.snapshot) {
		return false
	}

	prev := dm.cached
	dm.snapshot = live
	dm.current = dm.current[:0]
	for name, snap := range live {
		if snap.on {
			dm.current = append(dm.current, name)
		}
	}
	slices.Sort(dm.current)

	var b strings.Builder
	for _, name := range dm.current {
		b.WriteString("#define ")
		b.WriteString(name)
		if v := live[name].value; v != "" {
			b.WriteByte(' ')
			b.WriteString(v)
		}
		b.WriteByte('\n')
	}
	dm.cached = b.String()
	return dm.cached != prev
}

func sameSnapshot(a, b map[string]defineSnapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for name, sa := range a {
		if sb, ok := b[name]; !ok || sa != sb {
			return false
		}
	}
	return true
}

// stringFor returns the #define lines for the subset of names, in the
// order of the full block.
func (dm *defineMap) stringFor(names []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	for _, name := range dm.current {
		if !slices.Contains(names, name) {
			continue
		}
		b.WriteString("#define ")
		b.WriteString(name)
		if v := dm.snapshot[name].value; v != "" {
			b.WriteByte(' ')
			b.WriteString(v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
