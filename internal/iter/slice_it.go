// Package iter provides a small explicit-index iterator used in place of the
// lazy streams the original trip-walk code relied on (see Design Note 2:
// coroutine-like iteration replaced with explicit indices and binary search).
package iter

// SliceIterator walks a slice forward or backward via an explicit index,
// avoiding per-step allocation. It underlies the transfer builder's forward
// trip simulation (transfer.simulateForward).
type SliceIterator[T any] struct {
	data    []T
	length  int
	index   int
	reverse bool
}

func New[T any](data []T, reverse bool) *SliceIterator[T] {
	it := &SliceIterator[T]{data: data, length: len(data), reverse: reverse}
	if reverse {
		it.index = len(data) - 1
	} else {
		it.index = 0
	}
	return it
}

func (it *SliceIterator[T]) Length() int {
	return it.length
}

// HasNext reports whether Next can be called again.
func (it *SliceIterator[T]) HasNext() bool {
	if it.reverse {
		return it.index >= 0
	}
	return it.index < len(it.data)
}

// Next returns the next element in the iteration direction. Must be
// pre-guarded by HasNext.
func (it *SliceIterator[T]) Next() T {
	if !it.HasNext() {
		panic("iter: Next called without a preceding HasNext check")
	}

	val := it.data[it.index]
	if it.reverse {
		it.index--
	} else {
		it.index++
	}
	return val
}

// First returns the first element in iteration order (the last element of
// the underlying slice when reverse is set).
func (it *SliceIterator[T]) First() T {
	if it.length == 0 {
		panic("iter: First called on an empty slice")
	}
	if it.reverse {
		return it.data[it.length-1]
	}
	return it.data[0]
}

// Reset rewinds the iterator to its starting position.
func (it *SliceIterator[T]) Reset() {
	if it.reverse {
		it.index = it.length - 1
	} else {
		it.index = 0
	}
}
