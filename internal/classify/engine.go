package classify

import (
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/seqkat/lncat/internal/genepred"
)

// ErrNoCandidates is returned when a unit has no eligible candidates left
// after the pre-filter gate. It is a warning, not a failure: the unit is
// complete with zero output.
var ErrNoCandidates = errors.New("no eligible candidate transcripts")

// Config holds the classification thresholds and mode flags.
type Config struct {
	MinLength     int64   // minimum transcript length, default 200
	MaxLength     int64   // maximum transcript length, 0 = unset
	MinExons      int     // minimum exon count, default 1
	OverlapPct    float64 // exonic overlap percentage threshold, 0 = any overlap counts
	LincWindow    int64   // LincRNA proximity window in bases, 0 = unset
	AntisenseOnly bool    // report antisense exonic overlaps only
	KnownOnly     bool    // known-ncRNA comparison: exact-mode Exonic pass only
	Rescue        bool    // keep every assigned category, skip the class-code resync
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{MinLength: 200, MinExons: 1}
}

// Record is one classification decision for a candidate transcript.
type Record struct {
	CandidateID    string
	Chrom          string
	Category       Category
	Label          string
	EvidenceGeneID string // reference model that triggered the assignment, if any
	Length         int64
	ClassCode      string
	Raw            string // original input line
}

// Summary holds per-unit classification counts.
type Summary struct {
	Sample       string
	TotalInput   int
	Eligible     int
	ByCategory   map[Category]int
	Classified   int
	Unclassified int
}

// Result holds the classified and unclassified record streams for one unit.
type Result struct {
	Sample       string
	Classified   []Record
	Unclassified []Record
	Summary      Summary
}

// Engine classifies candidate transcripts against a shared read-only
// reference index. Category passes run in fixed priority order
// (Exonic, Inc, Conc, Ponc, LincRNA) and the first match is terminal.
type Engine struct {
	ref    *genepred.Index
	cfg    Config
	logger *zap.Logger
}

// NewEngine creates an engine over the given reference index.
func NewEngine(ref *genepred.Index, cfg Config) *Engine {
	return &Engine{
		ref:    ref,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for per-unit progress and warning messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// candidate pairs a pool entry with its precomputed transcript length.
type candidate struct {
	model  *genepred.GeneModel
	length int64
}

func candidateModels(cands []*candidate) []*genepred.GeneModel {
	models := make([]*genepred.GeneModel, len(cands))
	for i, c := range cands {
		models[i] = c.model
	}
	return models
}

// ClassifyPool classifies every candidate in the pool, consuming it fully.
// The dedup map is owned by the caller: the dispatcher constructs one per
// unit, while a single-threaded caller may reuse one across units.
// ErrNoCandidates is returned alongside a valid (empty) Result when the
// pre-filter leaves nothing to classify.
func (e *Engine) ClassifyPool(sample string, pool *genepred.Pool, dedup *DedupMap) (*Result, error) {
	res := &Result{
		Sample:  sample,
		Summary: Summary{Sample: sample, TotalInput: pool.Len()},
	}

	// Pre-filter gate: over-long candidates are dropped outright, and a
	// candidate must meet the length and exon-count floor to be eligible
	// for any category. Failures are silently excluded from both outputs.
	eligible := make(map[string][]*candidate)
	for _, chrom := range pool.Chromosomes() {
		var keep []*candidate
		for _, m := range pool.Models(chrom) {
			length, err := TranscriptLength(m.ID, m.Raw, m.ExonStarts, m.ExonEnds)
			if err != nil {
				return nil, err
			}
			if e.cfg.MaxLength > 0 && length > e.cfg.MaxLength {
				continue
			}
			if length < e.cfg.MinLength || m.NumExons() < e.cfg.MinExons {
				continue
			}
			keep = append(keep, &candidate{model: m, length: length})
			res.Summary.Eligible++
		}
		if len(keep) > 0 {
			eligible[chrom] = keep
		}
		pool.Replace(chrom, candidateModels(keep))
	}

	if res.Summary.Eligible == 0 {
		e.logger.Warn("unit has no eligible candidates",
			zap.String("sample", sample),
			zap.Int("input", res.Summary.TotalInput))
		e.finalize(res)
		return res, ErrNoCandidates
	}

	chroms := make([]string, 0, len(eligible))
	for c := range eligible {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)

	for _, chrom := range chroms {
		refs := e.ref.Models(chrom)
		cands := eligible[chrom]

		if e.cfg.KnownOnly {
			cands = e.exonicPass(refs, cands, dedup, res, true)
			for _, c := range cands {
				e.assign(res, dedup, c, nil, CategoryNoClass)
			}
			pool.Replace(chrom, nil)
			continue
		}

		cands = e.exonicPass(refs, cands, dedup, res, false)
		pool.Replace(chrom, candidateModels(cands))

		cands = e.incPass(refs, cands, dedup, res)
		pool.Replace(chrom, candidateModels(cands))

		cands = e.concPass(refs, cands, dedup, res)
		pool.Replace(chrom, candidateModels(cands))

		cands = e.poncPass(refs, cands, dedup, res)
		pool.Replace(chrom, candidateModels(cands))

		e.lincPass(refs, cands, dedup, res)
		pool.Replace(chrom, nil)
	}

	if !e.cfg.Rescue {
		e.resync(res)
	}
	e.finalize(res)

	e.logger.Info("unit classified",
		zap.String("sample", sample),
		zap.Int("input", res.Summary.TotalInput),
		zap.Int("eligible", res.Summary.Eligible),
		zap.Int("classified", res.Summary.Classified),
		zap.Int("unclassified", res.Summary.Unclassified))

	return res, nil
}

// assign records a terminal category for a candidate. A signature already
// present in the dedup map means the candidate was handled before; it is
// dropped without emitting a second record.
func (e *Engine) assign(res *Result, dedup *DedupMap, c *candidate, ref *genepred.GeneModel, cat Category) {
	antisense, stranded := false, false
	evidence := ""
	if ref != nil {
		antisense = IsAntisense(c.model.Strand, ref.Strand)
		stranded = c.model.IsStranded() && ref.IsStranded()
		evidence = ref.ID
	}
	label := cat.Label(antisense, stranded)

	if !dedup.Record(c.model.Signature(), label) {
		return
	}

	rec := Record{
		CandidateID:    c.model.ID,
		Chrom:          c.model.Chrom,
		Category:       cat,
		Label:          label,
		EvidenceGeneID: evidence,
		Length:         c.length,
		ClassCode:      c.model.ClassCode,
		Raw:            c.model.Raw,
	}

	// Sense-exonic suppression: with antisense-only set, a non-antisense
	// exonic overlap goes to the unclassified stream and the candidate does
	// not continue to later categories.
	if cat == CategoryNoClass || (cat == CategoryExonic && e.cfg.AntisenseOnly && !antisense) {
		res.Unclassified = append(res.Unclassified, rec)
		return
	}
	res.Classified = append(res.Classified, rec)
}

func (e *Engine) exonicPass(refs []*genepred.GeneModel, cands []*candidate, dedup *DedupMap, res *Result, exact bool) []*candidate {
	var survivors []*candidate
	for _, c := range cands {
		classified := false
		for _, r := range refs {
			if ExonicOverlap(r.ExonStarts, r.ExonEnds, c.model.ExonStarts, c.model.ExonEnds, e.cfg.OverlapPct, exact) {
				e.assign(res, dedup, c, r, CategoryExonic)
				classified = true
				break
			}
		}
		if !classified {
			survivors = append(survivors, c)
		}
	}
	return survivors
}

func (e *Engine) incPass(refs []*genepred.GeneModel, cands []*candidate, dedup *DedupMap, res *Result) []*candidate {
	var survivors []*candidate
	for _, c := range cands {
		classified := false
		for _, r := range refs {
			if r.TxStart < c.model.TxStart && c.model.TxEnd < r.TxEnd &&
				IntronicOverlap(c.model.TxStart, c.model.TxEnd, r.ExonStarts, r.ExonEnds) {
				e.assign(res, dedup, c, r, CategoryInc)
				classified = true
				break
			}
		}
		if !classified {
			survivors = append(survivors, c)
		}
	}
	return survivors
}

func (e *Engine) concPass(refs []*genepred.GeneModel, cands []*candidate, dedup *DedupMap, res *Result) []*candidate {
	// Candidate-span tree over the live pool. The candidate under test is in
	// the tree, so whenever the straddle condition below holds the lookup
	// finds at least its own span.
	spans := genepred.BuildIntervalTree(candidateModels(cands))
	var survivors []*candidate
	for _, c := range cands {
		classified := false
		for _, r := range refs {
			if c.model.TxStart < r.TxStart && c.model.TxStart < r.TxEnd &&
				c.model.TxEnd > r.TxStart && c.model.TxEnd > r.TxEnd &&
				IntronicOverlap(r.TxStart, r.TxEnd, c.model.ExonStarts, c.model.ExonEnds) &&
				len(spans.FindRange(r.TxStart, r.TxEnd)) > 0 {
				e.assign(res, dedup, c, r, CategoryConc)
				classified = true
				break
			}
		}
		if !classified {
			survivors = append(survivors, c)
		}
	}
	return survivors
}

func (e *Engine) poncPass(refs []*genepred.GeneModel, cands []*candidate, dedup *DedupMap, res *Result) []*candidate {
	spans := genepred.BuildIntervalTree(candidateModels(cands))
	var survivors []*candidate
	for _, c := range cands {
		classified := false
		for _, r := range refs {
			if partialOverlap(c.model, r) &&
				IntronicOverlap(r.TxStart, r.TxEnd, c.model.ExonStarts, c.model.ExonEnds) &&
				!ExonicOverlap(r.ExonStarts, r.ExonEnds, c.model.ExonStarts, c.model.ExonEnds, 0, false) &&
				len(spans.FindRange(r.TxStart, r.TxEnd)) > 0 {
				e.assign(res, dedup, c, r, CategoryPonc)
				classified = true
				break
			}
		}
		if !classified {
			survivors = append(survivors, c)
		}
	}
	return survivors
}

// partialOverlap reports whether candidate and reference spans overlap while
// neither contains the other.
func partialOverlap(c, r *genepred.GeneModel) bool {
	if !c.Overlaps(r.TxStart, r.TxEnd) {
		return false
	}
	containsRef := c.TxStart <= r.TxStart && c.TxEnd >= r.TxEnd
	containedByRef := r.TxStart <= c.TxStart && r.TxEnd >= c.TxEnd
	return !containsRef && !containedByRef
}

// lincPass resolves every remaining candidate to LincRNA or No Class.
func (e *Engine) lincPass(refs []*genepred.GeneModel, cands []*candidate, dedup *DedupMap, res *Result) {
	refTree := genepred.BuildIntervalTree(refs)
	for _, c := range cands {
		hits := refTree.FindRange(c.model.TxStart, c.model.TxEnd)
		if len(hits) > 0 {
			e.assign(res, dedup, c, nil, CategoryNoClass)
			continue
		}
		if e.cfg.LincWindow <= 0 {
			e.assign(res, dedup, c, nil, CategoryLincRNA)
			continue
		}
		// Proximity mode: the candidate must lie entirely within the window
		// upstream or downstream of exactly one reference boundary.
		var near *genepred.GeneModel
		count := 0
		for _, r := range refs {
			upstream := c.model.TxStart >= r.TxStart-e.cfg.LincWindow && c.model.TxEnd <= r.TxStart
			downstream := c.model.TxStart >= r.TxEnd && c.model.TxEnd <= r.TxEnd+e.cfg.LincWindow
			if upstream || downstream {
				near = r
				count++
			}
		}
		if count == 1 {
			e.assign(res, dedup, c, near, CategoryLincRNA)
		} else {
			e.assign(res, dedup, c, nil, CategoryNoClass)
		}
	}
}

// resync re-scans the classified output and keeps only records whose category
// agrees with the transcript's original class-code hint; the rest move to the
// unclassified output. Rescue mode skips this entirely.
func (e *Engine) resync(res *Result) {
	kept := res.Classified[:0]
	for _, rec := range res.Classified {
		if codeConsistent(rec.Category, strings.ToLower(rec.ClassCode)) {
			kept = append(kept, rec)
		} else {
			e.logger.Debug("resync moved record to unclassified",
				zap.String("sample", res.Sample),
				zap.String("candidate", rec.CandidateID),
				zap.String("label", rec.Label),
				zap.String("class_code", rec.ClassCode))
			res.Unclassified = append(res.Unclassified, rec)
		}
	}
	res.Classified = kept
}

// finalize recomputes the summary counts from the final record streams.
func (e *Engine) finalize(res *Result) {
	s := &res.Summary
	s.ByCategory = make(map[Category]int)
	for _, rec := range res.Classified {
		s.ByCategory[rec.Category]++
	}
	s.Classified = len(res.Classified)
	s.Unclassified = len(res.Unclassified)
}
