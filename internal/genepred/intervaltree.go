package genepred

import "sort"

// IntervalTree provides O(log n + k) range-overlap queries using a
// sorted-slice approach. Built fresh per chromosome and per classification
// pass; never mutated concurrently with queries.
type IntervalTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[:i+1]
}

type interval struct {
	start int64
	end   int64
	model *GeneModel
}

// BuildIntervalTree creates an interval tree over the transcript spans of the
// given gene models.
func BuildIntervalTree(models []*GeneModel) *IntervalTree {
	if len(models) == 0 {
		return &IntervalTree{}
	}

	intervals := make([]interval, len(models))
	for i, m := range models {
		intervals[i] = interval{start: m.TxStart, end: m.TxEnd, model: m}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Build prefix-max array: maxEnd[i] = max(end) for intervals[:i+1].
	// The query scans downward, so the prune must know the farthest end
	// among the remaining (earlier-starting) intervals, not the later ones.
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// FindRange returns all models whose span overlaps [start, end], bounds
// inclusive.
func (t *IntervalTree) FindRange(start, end int64) []*GeneModel {
	if len(t.intervals) == 0 {
		return nil
	}

	var result []*GeneModel

	// Binary search: find rightmost interval with start <= end.
	// All candidates must have start <= end of the query, so we only need
	// to scan from index 0 to that boundary.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > end
	})
	// hi is the first index with start > end; candidates are [0, hi).

	for i := hi - 1; i >= 0; i-- {
		// Prune: maxEnd[i] is the max end for intervals[:i+1].
		// If maxEnd[i] < start, no interval from 0..i can reach the query,
		// including wide intervals that start earlier than a nested one.
		if t.maxEnd[i] < start {
			break
		}
		if t.intervals[i].end >= start {
			result = append(result, t.intervals[i].model)
		}
	}

	return result
}
