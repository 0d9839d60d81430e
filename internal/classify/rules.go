// Package classify assigns lncRNA subclasses to candidate transcripts based
// on their positional relationship to a reference annotation.
package classify

import "fmt"

// GeometryError reports an exon geometry violation in a transcript record.
// It is fatal for the enclosing classification unit.
type GeometryError struct {
	ID     string // transcript ID
	Reason string // violated invariant
	Record string // offending record content
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry error in transcript %s: %s: %q", e.ID, e.Reason, e.Record)
}

// TranscriptLength returns the summed exon span length. Exon coordinates are
// half-open, so no +1 correction is applied. An exon with end < start or a
// zero total length is a GeometryError.
func TranscriptLength(id, record string, exonStarts, exonEnds []int64) (int64, error) {
	var total int64
	for i := range exonStarts {
		if exonEnds[i] < exonStarts[i] {
			return 0, &GeometryError{
				ID:     id,
				Reason: fmt.Sprintf("exon end %d before exon start %d", exonEnds[i], exonStarts[i]),
				Record: record,
			}
		}
		total += exonEnds[i] - exonStarts[i]
	}
	if total <= 0 {
		return 0, &GeometryError{ID: id, Reason: "zero-length transcript", Record: record}
	}
	return total, nil
}

// IsAntisense returns true only if both strands are "+" or "-" and they
// differ. Any unstranded participant makes the pair non-antisense.
func IsAntisense(a, b string) bool {
	if a != "+" && a != "-" {
		return false
	}
	if b != "+" && b != "-" {
		return false
	}
	return a != b
}

// ExonicOverlap tests every candidate exon against every reference exon.
//
// In normal mode it returns true as soon as one exon pair interleaves and the
// candidate-to-reference length ratio meets overlapPct (any interleaving
// counts when overlapPct <= 0).
//
// In exact mode (known ncRNA comparison) the percentage threshold is ignored
// and every candidate exon must interleave with some reference exon.
func ExonicOverlap(refStarts, refEnds, candStarts, candEnds []int64, overlapPct float64, exact bool) bool {
	matched := 0
	for i := range candStarts {
		cs, ce := candStarts[i], candEnds[i]
		exonMatched := false
		for j := range refStarts {
			rs, re := refStarts[j], refEnds[j]
			if ce <= rs || cs >= re {
				continue // no interleave
			}
			if exact {
				exonMatched = true
				break
			}
			if overlapPct <= 0 {
				return true
			}
			refLen := re - rs
			if refLen <= 0 {
				continue
			}
			pct := float64(ce-cs) / float64(refLen) * 100
			if pct >= overlapPct {
				return true
			}
		}
		if exonMatched {
			matched++
		}
	}
	return exact && matched > 0 && matched == len(candStarts)
}

// IntronicOverlap returns true if [qStart, qEnd] is strictly contained in a
// gap between two consecutive exons. Single-exon transcripts have no introns.
func IntronicOverlap(qStart, qEnd int64, exonStarts, exonEnds []int64) bool {
	if len(exonStarts) < 2 {
		return false
	}
	for i := 1; i < len(exonStarts); i++ {
		if qEnd < exonStarts[i] && qStart > exonEnds[i-1] {
			return true
		}
	}
	return false
}
