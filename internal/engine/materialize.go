package engine

import "graphd/internal/patternframe"

// MaterializeDeferred implements spec.md §4.6's transition: once
// per-primitive matching completes, allocate one DeferredBase sized to
// the compiled pattern frame count, and return one Value per frame —
// a ValueDeferred for every pf_set-bearing frame (spec.md's "rewrites
// each pf_set-bearing frame's result slot to a deferred value"), and a
// zero Value for any frame the caller must fill directly.
func MaterializeDeferred(compiled *patternframe.Compiled, ctx ReadSetContext) (*DeferredBase, []Value) {
	base := NewDeferredBase(len(compiled.Frames), ctx)
	out := make([]Value, len(compiled.Frames))
	for i, f := range compiled.Frames {
		if f.Set != nil {
			out[i] = Deferred(NewDeferredValue(base, i))
		}
	}
	return base, out
}
