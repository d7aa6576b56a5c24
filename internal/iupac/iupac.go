// Package iupac implements the IUPAC nucleotide ambiguity alphabet used
// for motif matching: A/T/G/C plus the eleven degenerate codes.
package iupac

const (
	// Nucleotides are the concrete symbols sequences are drawn from.
	Nucleotides = "ATGC"
	// Codes is the full 15-symbol motif alphabet.
	Codes = "ATGCWSRYMKBDHVN"
)

// Table maps each recognized IUPAC symbol to its equivalence class of
// concrete nucleotides. Immutable after construction, safe for any
// number of concurrent readers.
type Table struct {
	classes map[byte]string
}

// NewTable builds the 15-entry ambiguity table.
func NewTable() *Table {
	t := &Table{classes: make(map[byte]string, 15)}
	set := func(code byte, nucs string) { t.classes[code] = nucs }
	set('A', "A")
	set('T', "T")
	set('G', "G")
	set('C', "C")
	set('R', "AG")
	set('Y', "CT")
	set('S', "CG")
	set('W', "AT")
	set('K', "GT")
	set('M', "AC")
	set('B', "CGT")
	set('D', "AGT")
	set('H', "ACT")
	set('V', "ACG")
	set('N', "ATGC")
	return t
}

func fold(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// IsValid reports whether c, case-folded, is one of the 15 codes.
func (t *Table) IsValid(c byte) bool {
	_, ok := t.classes[fold(c)]
	return ok
}

// EquivalenceClass returns the concrete nucleotides code may stand for:
// one for A/T/G/C, up to four for N, empty for an unrecognized symbol.
func (t *Table) EquivalenceClass(code byte) string {
	return t.classes[fold(code)]
}

// Matches reports whether nucleotide nuc is a member of code's
// equivalence class. Invalid input on either side is a plain non-match,
// never an error.
func (t *Table) Matches(nuc, code byte) bool {
	class, ok := t.classes[fold(code)]
	if !ok {
		return false
	}
	n := fold(nuc)
	for i := 0; i < len(class); i++ {
		if class[i] == n {
			return true
		}
	}
	return false
}

// MatchesPatternAt reports whether every pattern symbol matches seq at
// the given offset. Offsets that would run past either end are a
// non-match rather than a panic.
func (t *Table) MatchesPatternAt(seq, pattern string, offset int) bool {
	if offset < 0 || offset+len(pattern) > len(seq) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if !t.Matches(seq[offset+i], pattern[i]) {
			return false
		}
	}
	return true
}

// FindAllOffsets returns every offset in [0, len(seq)-len(pattern)]
// where pattern matches seq, in ascending order. An empty pattern or a
// pattern longer than the sequence yields nil.
func (t *Table) FindAllOffsets(seq, pattern string) []int {
	if len(pattern) == 0 || len(seq) < len(pattern) {
		return nil
	}
	var out []int
	end := len(seq) - len(pattern)
	for pos := 0; pos <= end; pos++ {
		if t.MatchesPatternAt(seq, pattern, pos) {
			out = append(out, pos)
		}
	}
	return out
}
