package pipeline

import "github.com/cinevec/cinevec/pkg/models"

// Partition splits records into at most n contiguous ranges of near-equal
// size. The split is deterministic: the same input and n always produce the
// same partitions, so parallel partition outputs merge identically
// regardless of scheduling. Empty partitions are not emitted.
func Partition(records []models.Record, n int) [][]models.Record {
	if n < 1 {
		n = 1
	}
	if n > len(records) {
		n = len(records)
	}
	if n == 0 {
		return nil
	}

	base := len(records) / n
	remainder := len(records) % n

	partitions := make([][]models.Record, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < remainder {
			size++
		}
		partitions = append(partitions, records[start:start+size])
		start += size
	}
	return partitions
}
