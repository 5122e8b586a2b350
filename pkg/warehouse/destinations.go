// Package warehouse loads pipeline outputs into the columnar warehouse
// tables over bun. Both destinations append rows; schema and partitioning
// decisions belong to the warehouse owners, not the pipeline.
package warehouse

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/cinevec/cinevec/pkg/models"
	"github.com/cinevec/cinevec/pkg/uploader"
)

var _ uploader.Destination[models.TextRow] = &TextDestination{}
var _ uploader.Destination[models.ProcessLogRow] = &ProcessLogDestination{}

// TextDestination appends rows to the movie_text table.
type TextDestination struct {
	db *bun.DB
}

func NewTextDestination(db *bun.DB) *TextDestination {
	return &TextDestination{db: db}
}

func (d *TextDestination) Name() string { return "warehouse:movie_text" }

func (d *TextDestination) Upsert(ctx context.Context, rows []models.TextRow) error {
	if len(rows) == 0 {
		return nil
	}

	schemaRows := make([]MovieTextSchema, len(rows))
	for i, row := range rows {
		schemaRows[i] = MovieTextSchema{
			ID:           row.ID,
			CombinedText: row.CombinedText,
			CreatedAt:    row.CreatedAt,
		}
	}

	_, err := d.db.NewInsert().Model(&schemaRows).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to load movie_text batch: %w", err)
	}
	return nil
}

// ProcessLogDestination appends rows to the movie_process_log table.
type ProcessLogDestination struct {
	db *bun.DB
}

func NewProcessLogDestination(db *bun.DB) *ProcessLogDestination {
	return &ProcessLogDestination{db: db}
}

func (d *ProcessLogDestination) Name() string { return "warehouse:movie_process_log" }

func (d *ProcessLogDestination) Upsert(ctx context.Context, rows []models.ProcessLogRow) error {
	if len(rows) == 0 {
		return nil
	}

	schemaRows := make([]ProcessLogSchema, len(rows))
	for i, row := range rows {
		schemaRows[i] = ProcessLogSchema{
			ID:          row.ID,
			ProcessDate: row.ProcessDate,
			Filename:    row.Filename,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
		}
	}

	_, err := d.db.NewInsert().Model(&schemaRows).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to load movie_process_log batch: %w", err)
	}
	return nil
}
