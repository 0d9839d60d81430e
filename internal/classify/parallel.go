package classify

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/seqkat/lncat/internal/genepred"
)

// WorkUnit is one independent classification unit: a per-sample candidate
// table classified against the shared read-only reference index. Each unit
// owns its CandidatePool and its DedupMap and produces its own output
// streams.
type WorkUnit struct {
	Sample        string
	CandidatePath string
}

// WorkItem holds a unit ready for classification.
type WorkItem struct {
	Seq  int
	Unit WorkUnit
}

// WorkResult holds the classification output for a single unit. A failed
// unit carries its error here instead of aborting sibling units.
type WorkResult struct {
	Seq    int
	Unit   WorkUnit
	Result *Result
	Err    error
}

// Dispatcher partitions classification work across a bounded pool of
// workers, one unit per worker at a time. Workers share nothing but the
// engine's read-only reference index.
type Dispatcher struct {
	engine *Engine
	strict bool
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher over the given engine. strict controls
// candidate-table format validation.
func NewDispatcher(e *Engine, strict bool) *Dispatcher {
	return &Dispatcher{engine: e, strict: strict, logger: zap.NewNop()}
}

// SetLogger sets the logger for per-unit warnings.
func (d *Dispatcher) SetLogger(l *zap.Logger) {
	d.logger = l
}

// classifyUnit runs one unit to completion: load the candidate pool, build a
// fresh dedup map, classify. An empty unit is a defined early exit, not an
// error.
func (d *Dispatcher) classifyUnit(unit WorkUnit) (*Result, error) {
	pool, err := genepred.LoadPool(unit.CandidatePath, d.strict)
	if err != nil {
		return nil, fmt.Errorf("load candidates for %s: %w", unit.Sample, err)
	}

	res, err := d.engine.ClassifyPool(unit.Sample, pool, NewDedupMap())
	if errors.Is(err, ErrNoCandidates) {
		d.logger.Warn("unit completed with zero output",
			zap.String("sample", unit.Sample))
		return res, nil
	}
	return res, err
}

// ParallelClassify classifies work items using a pool of workers. Results
// are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (d *Dispatcher) ParallelClassify(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				res, err := d.classifyUnit(item.Unit)
				results <- WorkResult{
					Seq:    item.Seq,
					Unit:   item.Unit,
					Result: res,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// Run classifies all units with at most workers running concurrently and
// calls handle for each result in unit order. Per-unit errors are delivered
// through WorkResult.Err; only an error returned by handle aborts the run.
func (d *Dispatcher) Run(units []WorkUnit, workers int, handle func(WorkResult) error) error {
	items := make(chan WorkItem, len(units))
	for i, u := range units {
		items <- WorkItem{Seq: i, Unit: u}
	}
	close(items)

	return OrderedCollect(d.ParallelClassify(items, workers), handle)
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
