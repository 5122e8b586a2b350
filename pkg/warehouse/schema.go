package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	"github.com/oiime/logrusbun"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/cinevec/cinevec/internal"
)

var log = internal.GetLogger()

// MovieTextSchema is the full-text table: one row per processed record with
// the combined text that was embedded. Rows are appended, never updated.
type MovieTextSchema struct {
	bun.BaseModel `bun:"table:movie_text,alias:mt"`

	ID           string    `bun:",notnull"`
	CombinedText string    `bun:"combined_text,notnull"`
	CreatedAt    time.Time `bun:"type:timestamptz,nullzero,notnull,default:current_timestamp"`
}

// ProcessLogSchema is the processing-metadata table: one row per input
// record per run, whether processed or dropped.
type ProcessLogSchema struct {
	bun.BaseModel `bun:"table:movie_process_log,alias:mpl"`

	ID          string    `bun:",notnull"`
	ProcessDate string    `bun:"process_date,notnull"`
	Filename    string    `bun:",notnull"`
	Status      string    `bun:",notnull"`
	CreatedAt   time.Time `bun:"type:timestamptz,nullzero,notnull,default:current_timestamp"`
}

var tableModels = []interface{}{
	(*MovieTextSchema)(nil),
	(*ProcessLogSchema)(nil),
}

// CreateSchema creates the warehouse tables if they don't already exist.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range tableModels {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("error creating warehouse table: %w", err)
		}
	}
	return nil
}

// NewPostgresConn creates a new bun.DB connection to the warehouse database
// using the provided DSN. The connection pool is sized from the number of
// PROCs available.
func NewPostgresConn(dsn string) *bun.DB {
	maxOpenConns := 4 * runtime.GOMAXPROCS(0)

	sqldb := sql.OpenDB(
		pgdriver.NewConnector(
			pgdriver.WithDSN(dsn),
			pgdriver.WithReadTimeout(2*time.Minute),
		),
	)
	sqldb.SetMaxOpenConns(maxOpenConns)
	sqldb.SetMaxIdleConns(maxOpenConns)

	return bun.NewDB(sqldb, pgdialect.New())
}

// EnableDebugLogging adds a query hook that logs warehouse queries at debug
// level.
func EnableDebugLogging(db *bun.DB) {
	db.AddQueryHook(logrusbun.NewQueryHook(logrusbun.QueryHookOptions{
		LogSlow:         time.Second,
		Logger:          log,
		QueryLevel:      logrus.DebugLevel,
		ErrorLevel:      logrus.ErrorLevel,
		SlowLevel:       logrus.WarnLevel,
		MessageTemplate: "{{.Operation}}[{{.Duration}}]: {{.Query}}",
		ErrorTemplate:   "{{.Operation}}[{{.Duration}}]: {{.Query}}: {{.Error}}",
	}))
}
