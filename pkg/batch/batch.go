// Package batch groups ordered sequences into fixed-size ordered batches.
package batch

// Batch splits items into groups of at most size elements. Groups preserve
// the input order and the last group may be shorter. A zero-length input
// yields no groups. Groups are subslices of items and share its backing
// array; the input is never copied.
func Batch[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	var batches [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}
