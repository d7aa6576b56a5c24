package engine

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	"motifscan/internal/iupac"
	"motifscan/internal/motif"
)

func testCorpus() []motif.Sequence {
	// Five 40-symbol reads; seq1 and seq5 carry the ATGC repeat.
	return []motif.Sequence{
		{ID: "seq1", Symbols: strings.Repeat("ATGC", 10)},
		{ID: "seq2", Symbols: strings.Repeat("TTTT", 10)},
		{ID: "seq3", Symbols: strings.Repeat("GGGG", 10)},
		{ID: "seq4", Symbols: strings.Repeat("CCCC", 10)},
		{ID: "seq5", Symbols: strings.Repeat("ATGC", 10)},
	}
}

func TestScanOne(t *testing.T) {
	e := New(iupac.NewTable(), 1)
	seqs := testCorpus()
	m := motif.Motif{Pattern: "ATGCATGC"}

	hits := e.ScanOne(seqs[0], m, 0)
	want := []int{0, 4, 8, 12, 16, 20, 24, 28, 32}
	if len(hits) != len(want) {
		t.Fatalf("got %d hits, want %d", len(hits), len(want))
	}
	for i, h := range hits {
		if h.Offset != want[i] {
			t.Errorf("hit %d: offset %d, want %d", i, h.Offset, want[i])
		}
		if h.SeqIndex != 0 || h.Matched != "ATGCATGC" {
			t.Errorf("hit %d: %+v", i, h)
		}
	}

	if got := e.ScanOne(motif.Sequence{ID: "short", Symbols: "ATG"}, m, 7); got != nil {
		t.Errorf("short sequence: got %v, want nil", got)
	}
}

func TestAggregate(t *testing.T) {
	e := New(iupac.NewTable(), 1)
	seqs := testCorpus()

	tests := []struct {
		name    string
		pattern string
	}{
		{"exact", "ATGCATGC"},
		{"ambiguous R covers G", "ATRCATGC"},
	}
	for _, tc := range tests {
		r := e.Aggregate(seqs, motif.Motif{Pattern: tc.pattern})
		if r.SequencesMatched != 2 {
			t.Errorf("%s: SequencesMatched = %d, want 2", tc.name, r.SequencesMatched)
		}
		if r.Frequency != 0.4 {
			t.Errorf("%s: Frequency = %v, want 0.4", tc.name, r.Frequency)
		}
		if len(r.Matches) != 2 {
			t.Fatalf("%s: %d match records, want 2 (first per sequence)", tc.name, len(r.Matches))
		}
		if r.Matches[0].SeqIndex != 0 || r.Matches[0].Offset != 0 {
			t.Errorf("%s: first record %+v", tc.name, r.Matches[0])
		}
		if r.Matches[1].SeqIndex != 4 {
			t.Errorf("%s: second record %+v", tc.name, r.Matches[1])
		}
	}
}

func TestAggregateEmptyInputs(t *testing.T) {
	e := New(iupac.NewTable(), 2)

	r := e.Aggregate(nil, motif.Motif{Pattern: "ATGC"})
	if r.SequencesMatched != 0 || r.Frequency != 0 {
		t.Errorf("empty set: %+v", r)
	}

	if got := e.AggregateBatch(testCorpus(), nil); len(got) != 0 {
		t.Errorf("no motifs: got %d results", len(got))
	}
	if got := e.AggregateBatchParallel(testCorpus(), nil); len(got) != 0 {
		t.Errorf("no motifs parallel: got %d results", len(got))
	}
}

func TestAggregateIdempotent(t *testing.T) {
	e := New(iupac.NewTable(), 1)
	seqs := testCorpus()
	m := motif.Motif{Pattern: "ATGCATGC"}

	a := e.Aggregate(seqs, m)
	b := e.Aggregate(seqs, m)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeat call differs:\n%+v\n%+v", a, b)
	}
}

func TestAggregateBatchOrder(t *testing.T) {
	e := New(iupac.NewTable(), 1)
	motifs := []motif.Motif{
		{Pattern: "TTTTTTTT"},
		{Pattern: "ATGCATGC"},
		{Pattern: "GGGGGGGG"},
	}
	out := e.AggregateBatch(testCorpus(), motifs)
	if len(out) != 3 {
		t.Fatalf("got %d results", len(out))
	}
	for i := range motifs {
		if out[i].Pattern != motifs[i].Pattern {
			t.Errorf("result %d: pattern %s, want %s", i, out[i].Pattern, motifs[i].Pattern)
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	e := New(iupac.NewTable(), 4)
	seqs := testCorpus()
	motifs := []motif.Motif{
		{Pattern: "ATGCATGC"},
		{Pattern: "TTTTTTTT"},
		{Pattern: "GGGGGGGG"},
		{Pattern: "CCCCCCCC"},
		{Pattern: "ATRCATGC"},
		{Pattern: "NNNNNNNN"},
	}

	seq := e.AggregateBatch(seqs, motifs)
	par := e.AggregateBatchParallel(seqs, motifs)
	if len(par) != len(seq) {
		t.Fatalf("parallel returned %d results, want %d", len(par), len(seq))
	}

	// Parallel order is unspecified; compare after re-keying by pattern.
	sort.Slice(seq, func(i, j int) bool { return seq[i].Pattern < seq[j].Pattern })
	sort.Slice(par, func(i, j int) bool { return par[i].Pattern < par[j].Pattern })
	if !reflect.DeepEqual(seq, par) {
		t.Errorf("parallel differs from sequential:\n%+v\n%+v", seq, par)
	}
}

func TestTimings(t *testing.T) {
	e := New(iupac.NewTable(), 2)
	seqs := testCorpus()
	motifs := []motif.Motif{{Pattern: "ATGCATGC"}}

	e.Aggregate(seqs, motifs[0])
	e.AggregateBatch(seqs, motifs)
	e.AggregateBatchParallel(seqs, motifs)

	got := e.Timings()
	for _, op := range []string{"aggregate", "aggregate_batch", "aggregate_batch_parallel"} {
		if _, ok := got[op]; !ok {
			t.Errorf("missing timing for %q", op)
		}
	}
}
