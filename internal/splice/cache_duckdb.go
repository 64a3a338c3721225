package splice

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBPredictionStore is a PredictionStore backed by a DuckDB table,
// giving splice predictions the same durable, queryable backing store as
// internal/seqview's extmem page cache (spec.md §5: "splice predictors"
// are among the reference-counted shared immutable resources reused
// across DP tasks).
type DuckDBPredictionStore struct {
	db *sql.DB
}

// OpenDuckDBPredictionStore opens (creating if absent) a DuckDB database at
// path and ensures the splice_predictions schema exists.
func OpenDuckDBPredictionStore(path string) (*DuckDBPredictionStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb prediction store: %w", err)
	}
	s := &DuckDBPredictionStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DuckDBPredictionStore) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS splice_predictions (
			seq_id   VARCHAR,
			kind     INTEGER,
			page_no  INTEGER,
			scores   BLOB,
			PRIMARY KEY (seq_id, kind, page_no)
		);
	`)
	return err
}

// Close closes the underlying database connection.
func (s *DuckDBPredictionStore) Close() error { return s.db.Close() }

// FetchPage implements PredictionStore: it returns a memoized page if one
// is stored, else runs compute and persists the result.
func (s *DuckDBPredictionStore) FetchPage(seqID string, kind Kind, pageNo int, compute func() []int) ([]int, error) {
	var blob []byte
	err := s.db.QueryRow(`
		SELECT scores FROM splice_predictions WHERE seq_id = ? AND kind = ? AND page_no = ?
	`, seqID, int(kind), pageNo).Scan(&blob)
	if err == nil {
		return decodeScores(blob), nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("fetch splice page %s/%s/%d: %w", seqID, kind, pageNo, err)
	}

	scores := compute()
	blob = encodeScores(scores)
	_, err = s.db.Exec(`
		INSERT INTO splice_predictions (seq_id, kind, page_no, scores) VALUES (?, ?, ?, ?)
		ON CONFLICT (seq_id, kind, page_no) DO UPDATE SET scores = excluded.scores
	`, seqID, int(kind), pageNo, blob)
	if err != nil {
		return nil, fmt.Errorf("store splice page %s/%s/%d: %w", seqID, kind, pageNo, err)
	}
	return scores, nil
}

func encodeScores(scores []int) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(scores) * 4)
	for _, v := range scores {
		_ = binary.Write(buf, binary.LittleEndian, int32(v))
	}
	return buf.Bytes()
}

func decodeScores(blob []byte) []int {
	n := len(blob) / 4
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = int(int32(binary.LittleEndian.Uint32(blob[i*4 : i*4+4])))
	}
	return out
}
