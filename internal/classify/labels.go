package classify

// Category is a lncRNA subclass. Categories are evaluated in declaration
// order and the first match is terminal for a candidate.
type Category int

const (
	// CategoryExonic marks exonic overlap with a reference transcript.
	CategoryExonic Category = iota
	// CategoryInc marks a candidate fully contained in a reference intron.
	CategoryInc
	// CategoryConc marks a candidate whose intron fully contains a reference
	// transcript.
	CategoryConc
	// CategoryPonc marks a partial overlap consistent with an intron
	// boundary, excluding true exonic overlap.
	CategoryPonc
	// CategoryLincRNA marks a candidate with no reference overlap at all.
	CategoryLincRNA
	// CategoryNoClass marks a candidate that matched no category.
	CategoryNoClass
)

// NoClassLabel is the label written for unmatched candidates.
const NoClassLabel = "No Class (?)"

var categoryNames = map[Category]string{
	CategoryExonic:  "Exonic",
	CategoryInc:     "Inc",
	CategoryConc:    "Conc",
	CategoryPonc:    "Ponc",
	CategoryLincRNA: "LincRNA",
	CategoryNoClass: "NoClass",
}

func (c Category) String() string {
	return categoryNames[c]
}

// Label returns the user-facing category label, with the antisense/sense
// variant for stranded comparisons.
func (c Category) Label(antisense, stranded bool) string {
	switch c {
	case CategoryExonic:
		switch {
		case antisense:
			return "Antisense exonic overlap"
		case stranded:
			return "Sense exonic overlap"
		default:
			return "Exonic overlap"
		}
	case CategoryInc, CategoryConc, CategoryPonc:
		base := categoryNames[c]
		switch {
		case antisense:
			return "Antisense " + base
		case stranded:
			return "Sense " + base
		default:
			return base
		}
	case CategoryLincRNA:
		return "LincRNA"
	default:
		return NoClassLabel
	}
}

// resyncAccepted maps each category to the original comparison class codes it
// is consistent with. The post-pass resync drops classified records whose
// transcript carried a conflicting code; rescue mode disables the check.
var resyncAccepted = map[Category]map[string]bool{
	CategoryExonic:  {"x": true, "o": true, "e": true},
	CategoryInc:     {"i": true, "o": true, "x": true, "e": true},
	CategoryConc:    {"i": true, "o": true, "x": true, "e": true},
	CategoryPonc:    {"i": true, "o": true, "x": true, "e": true},
	CategoryLincRNA: {"u": true},
}

// codeConsistent reports whether a recorded category agrees with the
// transcript's original class-code hint. An absent code is always consistent.
func codeConsistent(cat Category, code string) bool {
	if code == "" || cat == CategoryNoClass {
		return true
	}
	accepted, ok := resyncAccepted[cat]
	if !ok {
		return true
	}
	return accepted[code]
}
