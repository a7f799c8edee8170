package iterator

import "errors"

// ErrUnknownIteratorTag is returned by Factory.Thaw when no Thawer is
// registered for the requested type tag.
var ErrUnknownIteratorTag = errors.New("iterator: unknown type tag")

// ErrFrozenTooLarge is returned by Freeze when the serialized fragment
// would need to be swapped out to the storable cache but the iterator
// was not given one to swap into (spec.md §4.8).
var ErrFrozenTooLarge = errors.New("iterator: frozen fragment exceeds inline size")
