package genepred

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FormatError reports a malformed gene-prediction record. It is fatal for the
// enclosing classification unit.
type FormatError struct {
	Line   int    // 1-based line number
	Reason string // violated invariant
	Record string // offending line content
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("gene-prediction format error at line %d: %s: %q", e.Line, e.Reason, e.Record)
}

// acceptedChromPrefixes is the naming prefix set enforced in strict mode.
var acceptedChromPrefixes = []string{"chr", "scaffold", "contig", "supercontig"}

func acceptedChrom(chrom string) bool {
	c := strings.ToLower(chrom)
	for _, p := range acceptedChromPrefixes {
		if strings.HasPrefix(c, p) {
			return true
		}
	}
	// Bare Ensembl-style names: 1..22, X, Y, MT
	switch c {
	case "x", "y", "mt", "m":
		return true
	}
	_, err := strconv.Atoi(c)
	return err == nil
}

// ReadTable parses a tab-separated gene-prediction table:
//
//	id chrom strand txStart txEnd cdsStart cdsEnd numExons exonStarts exonEnds [classCode ...]
//
// Exon coordinate lists are comma separated with an optional trailing comma.
// When strict is true, records with an unrecognized chromosome name, an
// invalid strand or a bad exon count are fatal; when strict is false those
// records are skipped. A mismatch between the exon start and end lists is
// fatal in either mode.
func ReadTable(path string, strict bool) ([]*GeneModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gene-prediction table: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return parseTable(reader, strict)
}

func parseTable(reader io.Reader, strict bool) ([]*GeneModel, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var models []*GeneModel
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		m, err := parseLine(line, lineNum, strict)
		if err != nil {
			if _, ok := err.(*FormatError); ok && !strict && !isListMismatch(err) {
				continue
			}
			return nil, err
		}
		if m == nil {
			continue
		}
		models = append(models, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan gene-prediction table: %w", err)
	}

	return models, nil
}

// isListMismatch reports whether a FormatError is the unrecoverable
// exon-list length mismatch, which stays fatal in lenient mode.
func isListMismatch(err error) bool {
	fe, ok := err.(*FormatError)
	return ok && strings.Contains(fe.Reason, "exon start/end list")
}

func parseLine(line string, lineNum int, strict bool) (*GeneModel, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 10 {
		return nil, &FormatError{Line: lineNum, Reason: fmt.Sprintf("expected at least 10 fields, got %d", len(fields)), Record: line}
	}

	if strict {
		if !acceptedChrom(fields[1]) {
			return nil, &FormatError{Line: lineNum, Reason: fmt.Sprintf("unrecognized chromosome name %q", fields[1]), Record: line}
		}
		if fields[2] != "+" && fields[2] != "-" && fields[2] != "." {
			return nil, &FormatError{Line: lineNum, Reason: fmt.Sprintf("invalid strand %q", fields[2]), Record: line}
		}
		if n, err := strconv.Atoi(fields[7]); err != nil || n < 0 {
			return nil, &FormatError{Line: lineNum, Reason: fmt.Sprintf("invalid exon count %q", fields[7]), Record: line}
		}
	}

	txStart, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, &FormatError{Line: lineNum, Reason: "invalid txStart", Record: line}
	}
	txEnd, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, &FormatError{Line: lineNum, Reason: "invalid txEnd", Record: line}
	}
	cdsStart, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil {
		return nil, &FormatError{Line: lineNum, Reason: "invalid cdsStart", Record: line}
	}
	cdsEnd, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return nil, &FormatError{Line: lineNum, Reason: "invalid cdsEnd", Record: line}
	}

	exonStarts, err := parseCoordList(fields[8])
	if err != nil {
		return nil, &FormatError{Line: lineNum, Reason: "invalid exon start list", Record: line}
	}
	exonEnds, err := parseCoordList(fields[9])
	if err != nil {
		return nil, &FormatError{Line: lineNum, Reason: "invalid exon end list", Record: line}
	}
	if len(exonStarts) != len(exonEnds) {
		return nil, &FormatError{Line: lineNum, Reason: "exon start/end list length mismatch", Record: line}
	}

	m := &GeneModel{
		ID:         fields[0],
		Chrom:      fields[1],
		Strand:     fields[2],
		TxStart:    txStart,
		TxEnd:      txEnd,
		CDSStart:   cdsStart,
		CDSEnd:     cdsEnd,
		ExonStarts: exonStarts,
		ExonEnds:   exonEnds,
		Raw:        line,
	}
	if len(fields) > 10 {
		m.ClassCode = strings.TrimSpace(fields[10])
	}
	return m, nil
}

// parseCoordList parses a comma-separated coordinate list, stripping a
// trailing comma.
func parseCoordList(s string) ([]int64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	coords := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse coordinate %q: %w", p, err)
		}
		coords[i] = v
	}
	return coords, nil
}

// LoadIndex reads a reference annotation table into an immutable Index.
func LoadIndex(path string, strict bool) (*Index, error) {
	models, err := ReadTable(path, strict)
	if err != nil {
		return nil, err
	}
	idx := NewIndex()
	for _, m := range models {
		idx.Add(m)
	}
	return idx, nil
}

// LoadPool reads a candidate transcript table into a mutable Pool.
func LoadPool(path string, strict bool) (*Pool, error) {
	models, err := ReadTable(path, strict)
	if err != nil {
		return nil, err
	}
	pool := NewPool()
	for _, m := range models {
		pool.Add(m)
	}
	return pool, nil
}
