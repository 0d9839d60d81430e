package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/seqkat/lncat/internal/classify"
)

// resultKey is the composite key for deduplicating rows before writing.
type resultKey struct {
	sample, transcriptID, label string
}

// WriteResult batch-inserts one unit's classification records using the
// Appender API. Duplicate (sample, transcript_id, lncrna_type) entries are
// deduplicated before writing.
func (s *Store) WriteResult(res *classify.Result) error {
	total := len(res.Classified) + len(res.Unclassified)
	if total == 0 {
		return nil
	}

	seen := make(map[resultKey]bool, total)

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "classification_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	appendRecs := func(recs []classify.Record, classified bool) error {
		for _, rec := range recs {
			k := resultKey{res.Sample, rec.CandidateID, rec.Label}
			if seen[k] {
				continue
			}
			seen[k] = true
			if err := appender.AppendRow(
				res.Sample, rec.CandidateID, rec.Chrom,
				rec.Category.String(), rec.Label, rec.EvidenceGeneID,
				rec.Length, rec.ClassCode, classified,
			); err != nil {
				return fmt.Errorf("append classification result: %w", err)
			}
		}
		return nil
	}

	if err := appendRecs(res.Classified, true); err != nil {
		return err
	}
	if err := appendRecs(res.Unclassified, false); err != nil {
		return err
	}

	return appender.Flush()
}

// CategoryCount is one row of a per-sample summary query.
type CategoryCount struct {
	Label string
	Count int64
}

// SampleSummary returns per-label record counts for one sample, classified
// records only, in descending count order.
func (s *Store) SampleSummary(sample string) ([]CategoryCount, error) {
	rows, err := s.db.Query(`SELECT lncrna_type, COUNT(*) AS n
		FROM classification_results
		WHERE sample = ? AND classified
		GROUP BY lncrna_type
		ORDER BY n DESC, lncrna_type`, sample)
	if err != nil {
		return nil, fmt.Errorf("query sample summary: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return counts, nil
}

// LookupTranscript returns the labels recorded for a transcript in a sample.
func (s *Store) LookupTranscript(sample, transcriptID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT lncrna_type FROM classification_results
		WHERE sample = ? AND transcript_id = ?`, sample, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript rows: %w", err)
	}
	return labels, nil
}

// ClearSample removes all stored results for a sample.
func (s *Store) ClearSample(sample string) error {
	_, err := s.db.Exec("DELETE FROM classification_results WHERE sample = ?", sample)
	return err
}
