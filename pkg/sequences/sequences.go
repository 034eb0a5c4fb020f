// Package sequences holds lazy folds over iter.Seq values.
package sequences

import "iter"

// Scan folds seq into initial and yields the accumulator after every
// element. The initial accumulator itself is not yielded.
func Scan[T, A any](seq iter.Seq[T], initial A, fn func(A, T) A) iter.Seq[A] {
	return func(yield func(A) bool) {
		if seq == nil {
			return
		}
		accumulator := initial
		for item := range seq {
			accumulator = fn(accumulator, item)
			if !yield(accumulator) {
				return
			}
		}
	}
}

// TryScan is Scan for a fold that can fail. The first error is yielded with
// the last good accumulator and ends the sequence.
func TryScan[T, A any](seq iter.Seq[T], initial A, fn func(A, T) (A, error)) iter.Seq2[A, error] {
	return func(yield func(A, error) bool) {
		if seq == nil {
			return
		}
		accumulator := initial
		for item := range seq {
			next, err := fn(accumulator, item)
			if err != nil {
				yield(accumulator, err)
				return
			}
			accumulator = next
			if !yield(accumulator, nil) {
				return
			}
		}
	}
}

// FirstRepeated returns the first element of seq equal to an earlier one.
// It stops pulling as soon as it finds one.
func FirstRepeated[T comparable](seq iter.Seq[T]) (T, bool) {
	var zero T
	if seq == nil {
		return zero, false
	}
	seen := map[T]struct{}{}
	for item := range seq {
		if _, ok := seen[item]; ok {
			return item, true
		}
		seen[item] = struct{}{}
	}
	return zero, false
}

// Last returns the final element of seq.
func Last[T any](seq iter.Seq[T]) (T, bool) {
	var last T
	found := false
	if seq == nil {
		return last, false
	}
	for item := range seq {
		last, found = item, true
	}
	return last, found
}
