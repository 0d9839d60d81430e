// Package genepred loads flat gene-prediction tables into per-chromosome
// gene model collections.
package genepred

import (
	"fmt"
	"strings"
)

// GeneModel represents one transcript record from a gene-prediction table.
type GeneModel struct {
	ID         string  // Transcript ID, unique within its source
	Chrom      string  // Chromosome, as written in the input
	Strand     string  // "+", "-" or "." (unstranded)
	TxStart    int64   // Transcript start
	TxEnd      int64   // Transcript end (TxStart <= TxEnd)
	CDSStart   int64   // CDS start, informational only
	CDSEnd     int64   // CDS end, informational only
	ExonStarts []int64 // Exon starts, ascending, half-open
	ExonEnds   []int64 // Exon ends, same length as ExonStarts
	ClassCode  string  // Original comparison class code ("u", "x", ...), "" if absent
	Raw        string  // Original input line, kept for output augmentation
}

// NumExons returns the number of exons.
func (m *GeneModel) NumExons() int {
	return len(m.ExonStarts)
}

// Key returns the lower-cased chromosome used for index lookups.
func (m *GeneModel) Key() string {
	return strings.ToLower(m.Chrom)
}

// IsStranded returns true if the strand is "+" or "-".
func (m *GeneModel) IsStranded() bool {
	return m.Strand == "+" || m.Strand == "-"
}

// Overlaps returns true if the transcript span overlaps [start, end].
func (m *GeneModel) Overlaps(start, end int64) bool {
	return m.TxStart <= end && m.TxEnd >= start
}

// Signature returns the structural key used to guarantee at most one
// classification per distinct transcript: id, strand, span, exon count and
// the full exon coordinate lists.
func (m *GeneModel) Signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%d|%d|%d|", m.ID, m.Strand, m.TxStart, m.TxEnd, m.NumExons())
	for _, s := range m.ExonStarts {
		fmt.Fprintf(&b, "%d,", s)
	}
	b.WriteByte('|')
	for _, e := range m.ExonEnds {
		fmt.Fprintf(&b, "%d,", e)
	}
	return b.String()
}
