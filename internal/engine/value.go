package engine

// ValueKind tags the shape of a result Value.
type ValueKind int

const (
	// ValueScalar carries a single result (a count, a name, a GUID).
	ValueScalar ValueKind = iota
	// ValueSequence carries an ordered list of per-primitive values.
	ValueSequence
	// ValueDeferred carries a reference to a not-yet-materialized
	// set-level value (spec.md §4.6).
	ValueDeferred
)

// Value is the read engine's one result type: a scalar, a sequence of
// per-primitive values, or a deferred reference that must be Pushed
// before its Scalar/Sequence fields are meaningful.
type Value struct {
	Kind     ValueKind
	Scalar   any
	Sequence []Value
	Deferred *DeferredValue
}

// Scalar builds a scalar Value.
func Scalar(v any) Value { return Value{Kind: ValueScalar, Scalar: v} }

// SequenceOf builds a sequence Value.
func SequenceOf(vs ...Value) Value { return Value{Kind: ValueSequence, Sequence: vs} }

// Deferred builds a Value that defers to dv until Pushed.
func Deferred(dv *DeferredValue) Value { return Value{Kind: ValueDeferred, Deferred: dv} }

// ReadBase is the root frame of a request's stack ("grb", spec.md §4.6):
// it holds the request and constraint tree, the in-progress result, the
// caller-owned output pointers, the deferred flag that tells the
// scheduler to pump deferred values before replying, and a link count so
// it can be freed last via a resource-free hook bound to the request's
// lifetime.
type ReadBase struct {
	Req    any
	Con    any
	Result Value

	ValOut *Value
	ErrOut *error

	// Deferred signals the scheduler that Result (or some value nested
	// in it) is a deferred value that must be pumped before the request
	// can reply.
	Deferred bool

	link int
}

// NewReadBase creates a ReadBase wired to the caller-owned output slots.
func NewReadBase(req, con any, valOut *Value, errOut *error) *ReadBase {
	return &ReadBase{Req: req, Con: con, ValOut: valOut, ErrOut: errOut}
}

// Link bumps the resource-table reference count that keeps this
// ReadBase alive.
func (b *ReadBase) Link() { b.link++ }

// Unlink drops the reference count and reports whether it has reached
// zero, meaning the caller should run the resource-free hook now (the
// ReadBase is freed last, after every frame and deferred base it
// spawned).
func (b *ReadBase) Unlink() bool {
	b.link--
	return b.link <= 0
}

// Unwind applies spec.md §4.6's result-unwinding rule after the top
// frame returns: a SEQUENCE of length 1 unwraps into *ValOut; anything
// else moves whole. *ErrOut is always set from the final frame's error.
func (b *ReadBase) Unwind(result Value, err error) {
	if result.Kind == ValueSequence && len(result.Sequence) == 1 {
		*b.ValOut = result.Sequence[0]
	} else {
		*b.ValOut = result
	}
	*b.ErrOut = err
}
