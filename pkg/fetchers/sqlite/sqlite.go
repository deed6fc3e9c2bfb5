package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/biolinks/biolinks/pkg/fetchers"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const (
	SQLiteFetcherName string = "sqlite"
)

// SQLiteFetcher runs query text as SQL against a local database and returns
// rows keyed by column name, the same shape the Fulcrum query API produces.
type SQLiteFetcher struct {
	dsn  string
	db   *sql.DB
	once sync.Once
	err  error
}

func NewSQLiteFetcher() *SQLiteFetcher {
	return &SQLiteFetcher{}
}

func (f *SQLiteFetcher) Init(params map[string]string) error {
	f.dsn = params["dsn"]
	if f.dsn == "" {
		return errors.New("sqlite fetcher requires a 'dsn' parameter")
	}
	return nil
}

func (f *SQLiteFetcher) Kind() fetchers.Kind {
	return fetchers.QueryStringKind
}

func (f *SQLiteFetcher) Fetch(ctx context.Context, query string, variables map[string]interface{}) (interface{}, error) {
	db, err := f.open()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite columns: %w", err)
	}

	result := make([]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
				continue
			}
			row[column] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (f *SQLiteFetcher) Close() error {
	if f.db == nil {
		return nil
	}
	return f.db.Close()
}

func (f *SQLiteFetcher) open() (*sql.DB, error) {
	f.once.Do(func() {
		if f.dsn == "" {
			f.err = fetchers.ErrNotInitialized
			return
		}
		db, err := sql.Open("sqlite", f.dsn)
		if err != nil {
			f.err = fmt.Errorf("open sqlite %s: %w", f.dsn, err)
			return
		}
		f.db = db
	})
	return f.db, f.err
}
