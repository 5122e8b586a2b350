// Package loader reads movie records from local JSONL files. Downloading
// from object storage and reconciling heterogeneous input schemas happen
// upstream; by the time a file reaches the loader it is one JSON record per
// line.
package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cinevec/cinevec/pkg/models"
)

// maxLineBytes bounds a single record line; overviews are short, this is
// generous.
const maxLineBytes = 1 << 20

// ReadRecords parses one Record per non-empty line of the JSONL file at
// path. Records missing an id are rejected; missing title or overview are
// tolerated and treated as empty.
func ReadRecords(path string) ([]models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()

	var records []models.Record

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var record models.Record
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("invalid record on line %d: %w", line, err)
		}
		if record.ID == "" {
			return nil, fmt.Errorf("record on line %d has no id", line)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	return records, nil
}
