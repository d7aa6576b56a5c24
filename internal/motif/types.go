// Package motif defines the data model shared by the scan engine, the
// cluster protocol and the writers, plus the input-file loaders.
package motif

// Sequence is one fixed-length DNA read with its header metadata. The
// symbol length is whatever the input carries; nothing downstream
// hardcodes it.
type Sequence struct {
	ID       string
	Symbols  string
	Metadata []string
}

// Motif is an IUPAC pattern with its three table scores.
type Motif struct {
	Pattern string
	Score1  float64
	Score2  float64
	Score3  float64
}

// Match records one occurrence of a motif within a sequence.
type Match struct {
	SeqIndex int
	Offset   int
	Matched  string
}

// Result aggregates one motif over a sequence set.
//
// SequencesMatched counts sequences containing at least one occurrence,
// not total occurrences (the legacy output column for it is still named
// Match_Count). Matches holds at most the first occurrence per matching
// sequence.
type Result struct {
	Pattern          string
	SequencesMatched uint64
	Frequency        float64
	Matches          []Match
}

// CalcFrequency sets Frequency = SequencesMatched/total, or 0 when the
// set was empty.
func (r *Result) CalcFrequency(total int) {
	if total > 0 {
		r.Frequency = float64(r.SequencesMatched) / float64(total)
	} else {
		r.Frequency = 0
	}
}
