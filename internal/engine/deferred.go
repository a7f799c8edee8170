package engine

// ReadSetContext is the external collaborator a deferred value resumes
// to materialize its set-level result: the per-primitive pump that is
// "out of scope" for this package (spec.md §1) but whose completion
// drives DeferredValue.Push. A single context can back every deferred
// slot on one DeferredBase, since they all come from the same read-set
// pump.
type ReadSetContext interface {
	// Resume drives the pump forward. Returning Done means every
	// pf_set-bearing frame's temporary slot on the base has been filled
	// for this round; More means the caller must suspend and retry.
	Resume() (Outcome, error)
}

// DeferredBase is the promise object spec.md §4.6 describes: a link
// count, a combined saved+temporary result array of twice the pattern
// frame count, and a back-pointer to the read-set context that fulfills
// it once pushed. values[0:pframeN] holds the saved (materialized)
// results; values[pframeN:2*pframeN] holds the temporary slots the pump
// writes into on each resume.
type DeferredBase struct {
	link         int
	pframeN      int
	materialized []bool
	values       []Value
	ctx          ReadSetContext
}

// NewDeferredBase allocates a base for pframeN pattern frames, backed by
// ctx.
func NewDeferredBase(pframeN int, ctx ReadSetContext) *DeferredBase {
	return &DeferredBase{
		pframeN:      pframeN,
		materialized: make([]bool, pframeN),
		values:       make([]Value, 2*pframeN),
		ctx:          ctx,
	}
}

// SetTemporary records the pump's result for pattern frame index into
// this round's temporary slot; called by the read-set context from
// within Resume.
func (b *DeferredBase) SetTemporary(index int, v Value) {
	b.values[b.pframeN+index] = v
}

// DeferredValue is the handle spec.md §4.6 returns in place of a not-yet
// -materialized set-level result: a (base, index) pair plus the four
// required operations.
type DeferredValue struct {
	Base  *DeferredBase
	Index int
}

// NewDeferredValue links base and returns a handle into its index'th
// slot.
func NewDeferredValue(base *DeferredBase, index int) *DeferredValue {
	base.link++
	return &DeferredValue{Base: base, Index: index}
}

// Push materializes this slot: on first access it resumes the read-set
// context; on every later access it copies straight from the base's
// saved result, never re-pumping (spec.md §4.6, §8 scenario 2).
func (d *DeferredValue) Push() (Value, Outcome, error) {
	b := d.Base
	if !b.materialized[d.Index] {
		outcome, err := b.ctx.Resume()
		if outcome != Done {
			return Value{}, outcome, err
		}
		b.values[d.Index] = b.values[b.pframeN+d.Index]
		b.materialized[d.Index] = true
	}
	return b.values[d.Index], Done, nil
}

// Suspend suspends all 2*pframeN values in the base, then the embedded
// context, if either supports it.
func (d *DeferredValue) Suspend() {
	d.Base.suspendAll()
}

// Unsuspend is Suspend's inverse.
func (d *DeferredValue) Unsuspend() {
	d.Base.unsuspendAll()
}

func (b *DeferredBase) suspendAll() {
	for _, v := range b.values {
		if v.Kind == ValueDeferred && v.Deferred != nil {
			v.Deferred.Suspend()
		}
	}
	if sc, ok := b.ctx.(Suspendable); ok {
		sc.Suspend()
	}
}

func (b *DeferredBase) unsuspendAll() {
	if sc, ok := b.ctx.(Suspendable); ok {
		sc.Unsuspend()
	}
	for _, v := range b.values {
		if v.Kind == ValueDeferred && v.Deferred != nil {
			v.Deferred.Unsuspend()
		}
	}
}

// Finish is called when the last referring value is destroyed: it
// finishes all 2*pframeN values and, once the base's link count reaches
// zero, frees it. "Finishing" a plain Value is a no-op; a nested
// deferred value finishes recursively.
func (d *DeferredValue) Finish() {
	b := d.Base
	b.link--
	if b.link > 0 {
		return
	}
	for _, v := range b.values {
		if v.Kind == ValueDeferred && v.Deferred != nil {
			v.Deferred.Finish()
		}
	}
	b.values = nil
	b.materialized = nil
}
