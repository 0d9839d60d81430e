// Package output writes classification record streams and unit summaries.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/seqkat/lncat/internal/classify"
)

// RecordWriter writes classification records as the original gene-prediction
// line augmented with transcript length and lncRNA type attributes.
type RecordWriter struct {
	w *bufio.Writer
}

// NewRecordWriter creates a new record writer.
func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{w: bufio.NewWriter(w)}
}

// Write writes a single record.
func (rw *RecordWriter) Write(rec classify.Record) error {
	_, err := rw.w.WriteString(Augment(rec) + "\n")
	return err
}

// Flush flushes buffered output.
func (rw *RecordWriter) Flush() error {
	return rw.w.Flush()
}

// Augment returns the record's original line with the classification
// attributes appended.
func Augment(rec classify.Record) string {
	return fmt.Sprintf("%s\ttranscript_length \"%d\"; lncRNA_type \"%s\";", rec.Raw, rec.Length, rec.Label)
}

// WriteUnitFiles writes the unit-scoped classified and unclassified output
// files for one result and returns their paths. Output files are per unit so
// independent classification decisions never interleave.
func WriteUnitFiles(dir string, res *classify.Result) (classifiedPath, noclassPath string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("create output directory: %w", err)
	}

	classifiedPath = filepath.Join(dir, res.Sample+".lncrna.tsv")
	noclassPath = filepath.Join(dir, res.Sample+".noclass.tsv")

	if err := writeRecords(classifiedPath, res.Classified); err != nil {
		return "", "", err
	}
	if err := writeRecords(noclassPath, res.Unclassified); err != nil {
		return "", "", err
	}
	return classifiedPath, noclassPath, nil
}

func writeRecords(path string, recs []classify.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	rw := NewRecordWriter(f)
	for _, rec := range recs {
		if err := rw.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return rw.Flush()
}

// summaryOrder fixes the category order in summary output.
var summaryOrder = []classify.Category{
	classify.CategoryExonic,
	classify.CategoryInc,
	classify.CategoryConc,
	classify.CategoryPonc,
	classify.CategoryLincRNA,
}

// WriteSummary writes the per-unit classification counts.
func WriteSummary(w io.Writer, s classify.Summary) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Sample: %s\n", s.Sample)
	fmt.Fprintf(bw, "  Input transcripts:  %d\n", s.TotalInput)
	fmt.Fprintf(bw, "  Eligible:           %d\n", s.Eligible)
	for _, cat := range summaryOrder {
		if n := s.ByCategory[cat]; n > 0 {
			fmt.Fprintf(bw, "  %-20s%d\n", cat.String()+":", n)
		}
	}
	fmt.Fprintf(bw, "  Categorized:        %d\n", s.Classified)
	fmt.Fprintf(bw, "  Uncategorized:      %d\n", s.Unclassified)
	return bw.Flush()
}
