package duckdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqkat/lncat/internal/classify"
)

func testResult() *classify.Result {
	return &classify.Result{
		Sample: "sampleA",
		Classified: []classify.Record{
			{CandidateID: "c1", Chrom: "chr1", Category: classify.CategoryExonic, Label: "Sense exonic overlap", EvidenceGeneID: "g1", Length: 400, ClassCode: "o"},
			{CandidateID: "c2", Chrom: "chr1", Category: classify.CategoryLincRNA, Label: "LincRNA", Length: 300, ClassCode: "u"},
			{CandidateID: "c3", Chrom: "chr2", Category: classify.CategoryLincRNA, Label: "LincRNA", Length: 250},
		},
		Unclassified: []classify.Record{
			{CandidateID: "c4", Chrom: "chr2", Category: classify.CategoryNoClass, Label: "No Class (?)", Length: 220},
		},
	}
}

func TestStore_WriteAndQuery(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.duckdb")

	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.WriteResult(testResult()))

	summary, err := store.SampleSummary("sampleA")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "LincRNA", summary[0].Label)
	assert.Equal(t, int64(2), summary[0].Count)
	assert.Equal(t, "Sense exonic overlap", summary[1].Label)
	assert.Equal(t, int64(1), summary[1].Count)

	labels, err := store.LookupTranscript("sampleA", "c4")
	require.NoError(t, err)
	assert.Equal(t, []string{"No Class (?)"}, labels)

	var total int
	require.NoError(t, store.DB().QueryRow(
		"SELECT COUNT(*) FROM classification_results WHERE sample = ?", "sampleA").Scan(&total))
	assert.Equal(t, 4, total)
}

func TestStore_DeduplicatesRows(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	res := &classify.Result{
		Sample: "s",
		Classified: []classify.Record{
			{CandidateID: "c1", Label: "LincRNA", Length: 300},
			{CandidateID: "c1", Label: "LincRNA", Length: 300},
		},
	}
	require.NoError(t, store.WriteResult(res))

	var total int
	require.NoError(t, store.DB().QueryRow(
		"SELECT COUNT(*) FROM classification_results").Scan(&total))
	assert.Equal(t, 1, total)
}

func TestStore_ClearSample(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.WriteResult(testResult()))
	require.NoError(t, store.ClearSample("sampleA"))

	summary, err := store.SampleSummary("sampleA")
	require.NoError(t, err)
	assert.Empty(t, summary)
}
