package genepred

import "sort"

// Index holds reference gene models keyed by lower-cased chromosome.
// Built once per run and never mutated afterwards, so it is safe to share
// across classification workers.
type Index struct {
	models map[string][]*GeneModel
}

// NewIndex creates a new empty index.
func NewIndex() *Index {
	return &Index{models: make(map[string][]*GeneModel)}
}

// Add adds a gene model to the index.
func (x *Index) Add(m *GeneModel) {
	x.models[m.Key()] = append(x.models[m.Key()], m)
}

// Models returns all reference models for a chromosome, in input order.
func (x *Index) Models(chrom string) []*GeneModel {
	return x.models[chrom]
}

// Chromosomes returns a sorted list of chromosomes in the index.
func (x *Index) Chromosomes() []string {
	chroms := make([]string, 0, len(x.models))
	for c := range x.models {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)
	return chroms
}

// Len returns the total number of models in the index.
func (x *Index) Len() int {
	n := 0
	for _, ms := range x.models {
		n += len(ms)
	}
	return n
}

// Pool holds candidate transcripts keyed by lower-cased chromosome. Unlike
// Index it is mutable: classified candidates are dropped as each category
// pass completes, so later passes see a strictly shrinking set. A Pool is
// owned by exactly one classification unit.
type Pool struct {
	models map[string][]*GeneModel
}

// NewPool creates a new empty candidate pool.
func NewPool() *Pool {
	return &Pool{models: make(map[string][]*GeneModel)}
}

// Add adds a candidate to the pool.
func (p *Pool) Add(m *GeneModel) {
	p.models[m.Key()] = append(p.models[m.Key()], m)
}

// Models returns the current candidates for a chromosome, in input order.
func (p *Pool) Models(chrom string) []*GeneModel {
	return p.models[chrom]
}

// Replace swaps in the surviving candidates for a chromosome after a pass.
func (p *Pool) Replace(chrom string, survivors []*GeneModel) {
	if len(survivors) == 0 {
		delete(p.models, chrom)
		return
	}
	p.models[chrom] = survivors
}

// Chromosomes returns a sorted list of chromosomes with candidates left.
func (p *Pool) Chromosomes() []string {
	chroms := make([]string, 0, len(p.models))
	for c := range p.models {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)
	return chroms
}

// Len returns the total number of candidates left in the pool.
func (p *Pool) Len() int {
	n := 0
	for _, ms := range p.models {
		n += len(ms)
	}
	return n
}
