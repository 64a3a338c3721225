// Package store provides an optional durable sink for PCR match reports,
// used by drivers that batch experiments to respect a memory_limit_MB
// cap (spec.md §4.6 "Memory policy": "the driver may process experiments
// in batches, calling prepare + simulate then resetting the engine before
// loading more"). Batches accumulate matches through separate Engine
// lifetimes; the store lets a driver persist each batch's reported
// products instead of holding every batch's results in memory at once.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

// Hit is one reported PCR product, flattened for durable storage.
type Hit struct {
	ExperimentID   string
	PrimerAID      string
	PrimerBID      string
	APos, BPos     int
	AMismatches    int
	BMismatches    int
	ProductLength  int
}

// Store is a DuckDB-backed sink for Hit rows, giving batched PCR runs the
// same query-or-compute-and-persist shape as internal/splice's prediction
// cache and internal/seqview's extmem page cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) a DuckDB database at path and ensures
// the pcr_hits schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open pcr hit store: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS pcr_hits (
			experiment_id  VARCHAR,
			primer_a_id    VARCHAR,
			primer_b_id    VARCHAR,
			a_pos          INTEGER,
			b_pos          INTEGER,
			a_mismatches   INTEGER,
			b_mismatches   INTEGER,
			product_length INTEGER
		);
	`)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Record persists one hit. Batches append; nothing is deduplicated, since
// distinct batches scan disjoint sequence ranges and can never report the
// same (experiment, a_pos, b_pos) pair twice.
func (s *Store) Record(h Hit) error {
	_, err := s.db.Exec(`
		INSERT INTO pcr_hits (experiment_id, primer_a_id, primer_b_id, a_pos, b_pos, a_mismatches, b_mismatches, product_length)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ExperimentID, h.PrimerAID, h.PrimerBID, h.APos, h.BPos, h.AMismatches, h.BMismatches, h.ProductLength)
	if err != nil {
		return fmt.Errorf("record pcr hit for experiment %q: %w", h.ExperimentID, err)
	}
	return nil
}

// CountForExperiment returns the number of hits recorded so far for id,
// letting a driver report progress across batches without holding every
// hit in memory.
func (s *Store) CountForExperiment(id string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pcr_hits WHERE experiment_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pcr hits for experiment %q: %w", id, err)
	}
	return n, nil
}

// All returns every recorded hit for id, ordered by position. Intended for
// final report assembly once all batches have completed.
func (s *Store) All(id string) ([]Hit, error) {
	rows, err := s.db.Query(`
		SELECT experiment_id, primer_a_id, primer_b_id, a_pos, b_pos, a_mismatches, b_mismatches, product_length
		FROM pcr_hits WHERE experiment_id = ? ORDER BY a_pos, b_pos
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list pcr hits for experiment %q: %w", id, err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ExperimentID, &h.PrimerAID, &h.PrimerBID, &h.APos, &h.BPos, &h.AMismatches, &h.BMismatches, &h.ProductLength); err != nil {
			return nil, fmt.Errorf("scan pcr hit for experiment %q: %w", id, err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
