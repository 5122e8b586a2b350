package models

import "time"

// Record is a single movie record as read from the input loader. It is
// immutable once constructed.
type Record struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Overview string `json:"overview"`
}

// CombinedText returns the text that is chunked and embedded for this record.
// Missing title or overview are treated as empty strings.
func (r Record) CombinedText() string {
	return r.Title + ". " + r.Overview
}

// Chunk is one token-bounded slice of a record's combined text. Chunks carry
// their owner explicitly rather than relying on positional bookkeeping.
// SiblingCount is the total number of chunks emitted for the owner record.
type Chunk struct {
	OwnerIndex   int
	Text         string
	SiblingCount int
}

// RecordEmbedding is the pipeline's output for one input record. Vector is
// the element-wise mean of the record's successfully embedded chunks, in
// chunk-emission order. A nil Vector means every chunk for the record failed
// after retries were exhausted.
type RecordEmbedding struct {
	RecordIndex int
	Vector      []float32
}

// UploadItem is one vector-index upsert payload. It is only built from
// records whose embedding succeeded.
type UploadItem struct {
	ID       string
	Vector   []float32
	Metadata map[string]interface{}
}

// TextRow is one row of the warehouse full-text table.
type TextRow struct {
	ID           string
	CombinedText string
	CreatedAt    time.Time
}

// ProcessLogRow is one row of the warehouse processing-metadata table.
type ProcessLogRow struct {
	ID          string
	ProcessDate string
	Filename    string
	Status      string
	CreatedAt   time.Time
}

// Record processing statuses recorded in the warehouse metadata table.
const (
	StatusProcessed = "processed"
	StatusDropped   = "dropped"
)
