package motif

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSequences(t *testing.T) {
	path := writeFile(t, "reads.fst", strings.Join([]string{
		">seq1\tchr1\tpeak_17",
		"atgcatgc",
		"ATGCATGC",
		"",
		">seq2",
		"TTTTTTTT",
		">bad1\tchr2",
		"ATGXATGC", // non-ATGC symbol: dropped, not fatal
		">seq3",
		"GG GG", // inline whitespace stripped
	}, "\n"))

	seqs, stats, err := LoadSequences(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 3 {
		t.Fatalf("got %d sequences, want 3", len(seqs))
	}
	if seqs[0].ID != "seq1" || seqs[0].Symbols != "ATGCATGCATGCATGC" {
		t.Errorf("seq1: %+v", seqs[0])
	}
	if len(seqs[0].Metadata) != 2 || seqs[0].Metadata[1] != "peak_17" {
		t.Errorf("seq1 metadata: %v", seqs[0].Metadata)
	}
	if seqs[1].Metadata != nil {
		t.Errorf("seq2 metadata should be empty: %v", seqs[1].Metadata)
	}
	if seqs[2].Symbols != "GGGG" {
		t.Errorf("seq3 symbols: %q", seqs[2].Symbols)
	}
	if stats["sequences_parsed"] != 3 || stats["sequences_invalid"] != 1 {
		t.Errorf("stats: %v", stats)
	}
}

func TestLoadSequencesMissingFile(t *testing.T) {
	if _, _, err := LoadSequences(filepath.Join(t.TempDir(), "nope.fst"), false); err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestLoadMotifs(t *testing.T) {
	path := writeFile(t, "motifs.mot", strings.Join([]string{
		"# transcription factor motifs",
		"",
		"atgcatgc\t1.5\t-2.25\t0",
		"NNNNNNNN\t0.1\t0.2\t0.3",
	}, "\n"))

	motifs, err := LoadMotifs(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(motifs) != 2 {
		t.Fatalf("got %d motifs, want 2", len(motifs))
	}
	if motifs[0].Pattern != "ATGCATGC" {
		t.Errorf("pattern not upper-cased: %q", motifs[0].Pattern)
	}
	if motifs[0].Score1 != 1.5 || motifs[0].Score2 != -2.25 || motifs[0].Score3 != 0 {
		t.Errorf("scores: %+v", motifs[0])
	}
}

func TestLoadMotifsBadLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too few fields", "ATGC\t1.0\t2.0"},
		{"bad score", "ATGC\t1.0\ttwo\t3.0"},
	}
	for _, tc := range tests {
		path := writeFile(t, "bad.mot", tc.content)
		if _, err := LoadMotifs(path); err == nil {
			t.Errorf("%s: want error", tc.name)
		} else if !strings.Contains(err.Error(), ":1") {
			t.Errorf("%s: error should carry line context: %v", tc.name, err)
		}
	}
}

func TestCalcFrequency(t *testing.T) {
	r := Result{SequencesMatched: 2}
	r.CalcFrequency(5)
	if r.Frequency != 0.4 {
		t.Errorf("frequency = %v, want 0.4", r.Frequency)
	}
	r.CalcFrequency(0)
	if r.Frequency != 0 {
		t.Errorf("zero total must give 0, got %v", r.Frequency)
	}
}
