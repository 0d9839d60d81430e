package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqkat/lncat/internal/genepred"
)

func writeCandidateFile(t *testing.T, dir, sample string, lines ...string) WorkUnit {
	t.Helper()
	path := filepath.Join(dir, sample+".genePred")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return WorkUnit{Sample: sample, CandidatePath: path}
}

func candidateLine(id string, start, end int64) string {
	return fmt.Sprintf("%s\tchr1\t+\t%d\t%d\t%d\t%d\t1\t%d,\t%d,", id, start, end, start, start, start, end)
}

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	ref := makeIndex(model("ref1", "chr1", "+", [2]int64{1000, 1500}, [2]int64{3000, 3500}))
	return NewDispatcher(NewEngine(ref, DefaultConfig()), true)
}

func TestDispatcher_Run(t *testing.T) {
	dir := t.TempDir()
	units := []WorkUnit{
		writeCandidateFile(t, dir, "sampleA", candidateLine("a1", 1100, 1400)),
		writeCandidateFile(t, dir, "sampleB", candidateLine("b1", 15000, 15400)),
	}

	d := testDispatcher(t)
	var got []WorkResult
	err := d.Run(units, 2, func(r WorkResult) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "sampleA", got[0].Unit.Sample)
	assert.Equal(t, "sampleB", got[1].Unit.Sample)

	require.NoError(t, got[0].Err)
	require.Len(t, got[0].Result.Classified, 1)
	assert.Equal(t, "Sense exonic overlap", got[0].Result.Classified[0].Label)

	require.NoError(t, got[1].Err)
	require.Len(t, got[1].Result.Classified, 1)
	assert.Equal(t, "LincRNA", got[1].Result.Classified[0].Label)
}

func TestDispatcher_FailedUnitDoesNotAbortSiblings(t *testing.T) {
	dir := t.TempDir()
	units := []WorkUnit{
		writeCandidateFile(t, dir, "broken", "b1\tchr1\t*\t100\t400\t100\t100\t1\t100,\t400,"),
		writeCandidateFile(t, dir, "good", candidateLine("g1", 1100, 1400)),
	}

	d := testDispatcher(t)
	var got []WorkResult
	err := d.Run(units, 2, func(r WorkResult) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	var fe *genepred.FormatError
	require.Error(t, got[0].Err)
	assert.ErrorAs(t, got[0].Err, &fe, "format error surfaces through the unit result")

	require.NoError(t, got[1].Err)
	assert.Len(t, got[1].Result.Classified, 1)
}

func TestDispatcher_EmptyUnitComplete(t *testing.T) {
	dir := t.TempDir()
	units := []WorkUnit{
		writeCandidateFile(t, dir, "empty"),
	}

	d := testDispatcher(t)
	var got []WorkResult
	err := d.Run(units, 1, func(r WorkResult) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	require.NoError(t, got[0].Err, "empty unit completes successfully")
	assert.Zero(t, got[0].Result.Summary.Classified)
	assert.Zero(t, got[0].Result.Summary.Unclassified)
}

func TestDispatcher_OrderPreservation(t *testing.T) {
	dir := t.TempDir()
	const n = 40
	units := make([]WorkUnit, n)
	for i := 0; i < n; i++ {
		units[i] = writeCandidateFile(t, dir, fmt.Sprintf("s%03d", i), candidateLine("c1", 1100, 1400))
	}

	d := testDispatcher(t)
	var seqs []int
	err := d.Run(units, 8, func(r WorkResult) error {
		require.NoError(t, r.Err)
		seqs = append(seqs, r.Seq)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, seqs, n)
	for i, seq := range seqs {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestDispatcher_UnitsHaveIndependentDedupScope(t *testing.T) {
	// The same transcript appearing in two units is classified once per
	// unit: dedup scope is per work unit under the pool.
	dir := t.TempDir()
	units := []WorkUnit{
		writeCandidateFile(t, dir, "u1", candidateLine("shared", 1100, 1400)),
		writeCandidateFile(t, dir, "u2", candidateLine("shared", 1100, 1400)),
	}

	d := testDispatcher(t)
	total := 0
	err := d.Run(units, 2, func(r WorkResult) error {
		require.NoError(t, r.Err)
		total += len(r.Result.Classified)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestOrderedCollect_HandlerErrorAborts(t *testing.T) {
	results := make(chan WorkResult, 3)
	for i := 0; i < 3; i++ {
		results <- WorkResult{Seq: i}
	}
	close(results)

	calls := 0
	err := OrderedCollect(results, func(WorkResult) error {
		calls++
		return fmt.Errorf("handler failure")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
