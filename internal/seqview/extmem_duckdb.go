package seqview

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBPageStore is a PageSource backed by a DuckDB table, following the
// same sql.Open + lazy-query shape as the teacher's cache.DuckDBLoader. It
// gives the paged extmem cache (spec.md §3) a durable, queryable backing
// store instead of an in-process map, so large contigs can be staged once
// and reused read-only across many DP tasks (spec.md §5: sequences are
// reference-counted shared immutable resources).
type DuckDBPageStore struct {
	db *sql.DB
}

// OpenDuckDBPageStore opens (creating if absent) a DuckDB database at path
// and ensures the pages schema exists.
func OpenDuckDBPageStore(path string) (*DuckDBPageStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb page store: %w", err)
	}
	s := &DuckDBPageStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DuckDBPageStore) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS pages (
			seq_id  VARCHAR,
			page_no INTEGER,
			symbols BLOB,
			PRIMARY KEY (seq_id, page_no)
		);
	`)
	return err
}

// Close closes the underlying database connection.
func (s *DuckDBPageStore) Close() error { return s.db.Close() }

// PutPage stores one page's symbols, overwriting any prior contents. Pages
// are immutable once filled from the DP engine's perspective (spec.md §3);
// this method exists only for cache population by an offline loader.
func (s *DuckDBPageStore) PutPage(seqID string, pageNo int, symbols []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO pages (seq_id, page_no, symbols) VALUES (?, ?, ?)
		ON CONFLICT (seq_id, page_no) DO UPDATE SET symbols = excluded.symbols
	`, seqID, pageNo, symbols)
	if err != nil {
		return fmt.Errorf("put page %s/%d: %w", seqID, pageNo, err)
	}
	return nil
}

// FetchPage implements PageSource by querying the pages table.
func (s *DuckDBPageStore) FetchPage(seqID string, pageNo int) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`
		SELECT symbols FROM pages WHERE seq_id = ? AND page_no = ?
	`, seqID, pageNo).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s/%d: %w", seqID, pageNo, err)
	}
	return data, nil
}
