package motif

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb/v3"

	"motifscan/internal/logger"
)

// ParseStats counts loader outcomes (sequences_parsed, sequences_invalid,
// motifs_parsed, ...) for the --stats dump.
type ParseStats map[string]int

func (s ParseStats) bump(key string) { s[key]++ }

// LoadSequences reads a FASTA-style sequence file: each record is a
// header line ">id<TAB>meta..." followed by one or more sequence lines.
// Sequence lines are upper-cased and concatenated. Records containing
// symbols outside A/T/G/C are dropped and counted, not fatal. With
// progress true a byte-progress bar is drawn to stderr.
func LoadSequences(path string, progress bool) ([]Sequence, ParseStats, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sequences: %w", err)
	}
	defer func() { _ = fh.Close() }()

	var r io.Reader = fh
	if progress {
		if st, serr := fh.Stat(); serr == nil {
			bar := pb.Full.Start64(st.Size())
			bar.Set(pb.Bytes, true)
			defer bar.Finish()
			r = bar.NewProxyReader(fh)
		}
	}

	stats := make(ParseStats)
	var (
		list    []Sequence
		id      string
		meta    []string
		inRec   bool
		symbols strings.Builder
	)

	flush := func() {
		if !inRec {
			return
		}
		seq := Sequence{ID: id, Symbols: symbols.String(), Metadata: meta}
		if seq.Symbols != "" && validNucleotides(seq.Symbols) {
			list = append(list, seq)
			stats.bump("sequences_parsed")
		} else {
			stats.bump("sequences_invalid")
			logger.Warn("dropping sequence %q: non-ATGC symbols", seq.ID)
		}
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			flush()
			fields := strings.Split(line[1:], "\t")
			id = fields[0]
			meta = nil
			if len(fields) > 1 {
				meta = fields[1:]
			}
			symbols.Reset()
			inRec = true
			continue
		}
		symbols.WriteString(strings.ToUpper(stripSpace(line)))
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read sequences: %w", err)
	}
	flush()

	return list, stats, nil
}

// LoadMotifs reads a motif table: one motif per line, tab-separated
// pattern plus three scores. Blank lines and '#' comments are skipped;
// a malformed line is an error with file:line context.
func LoadMotifs(path string) ([]Motif, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open motifs: %w", err)
	}
	defer func() { _ = fh.Close() }()

	var list []Motif
	sc := bufio.NewScanner(fh)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Split(line, "\t")
		if len(f) < 4 {
			return nil, fmt.Errorf("%s:%d bad field count", path, ln)
		}
		m := Motif{Pattern: strings.ToUpper(strings.TrimSpace(f[0]))}
		for i, dst := range []*float64{&m.Score1, &m.Score2, &m.Score3} {
			v, perr := strconv.ParseFloat(strings.TrimSpace(f[i+1]), 64)
			if perr != nil {
				return nil, fmt.Errorf("%s:%d bad score %d: %v", path, ln, i+1, perr)
			}
			*dst = v
		}
		list = append(list, m)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read motifs: %w", err)
	}
	return list, nil
}

func validNucleotides(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'T', 'G', 'C':
		default:
			return false
		}
	}
	return true
}

func stripSpace(s string) string {
	if !strings.ContainsAny(s, " \t") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
