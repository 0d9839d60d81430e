package classify

// DedupMap guarantees at most one category per distinct candidate signature.
// It is owned by exactly one classification unit and passed explicitly
// through the engine, never held as package state. Units running under the
// worker pool each construct their own map; a single-threaded caller may
// share one map across units to widen the dedup scope to the whole run.
type DedupMap struct {
	m map[string]string
}

// NewDedupMap creates a new empty dedup map.
func NewDedupMap() *DedupMap {
	return &DedupMap{m: make(map[string]string)}
}

// Seen reports whether a signature has already been assigned a category.
func (d *DedupMap) Seen(sig string) bool {
	_, ok := d.m[sig]
	return ok
}

// Record stores the category label for a signature. It returns false if the
// signature was already recorded, leaving the original assignment intact.
func (d *DedupMap) Record(sig, label string) bool {
	if _, ok := d.m[sig]; ok {
		return false
	}
	d.m[sig] = label
	return true
}

// Label returns the recorded label for a signature.
func (d *DedupMap) Label(sig string) (string, bool) {
	label, ok := d.m[sig]
	return label, ok
}

// Len returns the number of recorded signatures.
func (d *DedupMap) Len() int {
	return len(d.m)
}
