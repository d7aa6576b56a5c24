// Package wire implements the length-prefixed binary layout the cluster
// peers exchange. Every integer is a big-endian fixed-width count and
// every variable-length string carries its own u32 byte count, so two
// independently built peers agree byte-for-byte. Encoding and decoding
// work on plain byte slices and need no live transport.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"motifscan/internal/motif"
)

// EncodeSequenceBlock frames one scatter destination's share: the global
// sequence count, the local count, then each record as length-prefixed
// id, symbols and metadata strings.
func EncodeSequenceBlock(total int, seqs []motif.Sequence) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(total))
	putUint32(&buf, uint32(len(seqs)))
	for _, s := range seqs {
		putString(&buf, s.ID)
		putString(&buf, s.Symbols)
		putUint32(&buf, uint32(len(s.Metadata)))
		for _, m := range s.Metadata {
			putString(&buf, m)
		}
	}
	return buf.Bytes()
}

// DecodeSequenceBlock is the inverse of EncodeSequenceBlock.
func DecodeSequenceBlock(b []byte) (total int, seqs []motif.Sequence, err error) {
	r := &reader{b: b}
	tot, err := r.uint32()
	if err != nil {
		return 0, nil, err
	}
	count, err := r.uint32()
	if err != nil {
		return 0, nil, err
	}
	seqs = make([]motif.Sequence, 0, count)
	for i := uint32(0); i < count; i++ {
		var s motif.Sequence
		if s.ID, err = r.str(); err != nil {
			return 0, nil, err
		}
		if s.Symbols, err = r.str(); err != nil {
			return 0, nil, err
		}
		mc, err := r.uint32()
		if err != nil {
			return 0, nil, err
		}
		for j := uint32(0); j < mc; j++ {
			m, err := r.str()
			if err != nil {
				return 0, nil, err
			}
			s.Metadata = append(s.Metadata, m)
		}
		seqs = append(seqs, s)
	}
	if err := r.done(); err != nil {
		return 0, nil, err
	}
	return int(tot), seqs, nil
}

// EncodeMotifBlock frames the broadcast payload: motif count, then each
// pattern with its three scores.
func EncodeMotifBlock(motifs []motif.Motif) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(motifs)))
	for _, m := range motifs {
		putString(&buf, m.Pattern)
		putFloat64(&buf, m.Score1)
		putFloat64(&buf, m.Score2)
		putFloat64(&buf, m.Score3)
	}
	return buf.Bytes()
}

// DecodeMotifBlock is the inverse of EncodeMotifBlock.
func DecodeMotifBlock(b []byte) ([]motif.Motif, error) {
	r := &reader{b: b}
	count, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]motif.Motif, 0, count)
	for i := uint32(0); i < count; i++ {
		var m motif.Motif
		if m.Pattern, err = r.str(); err != nil {
			return nil, err
		}
		if m.Score1, err = r.float64(); err != nil {
			return nil, err
		}
		if m.Score2, err = r.float64(); err != nil {
			return nil, err
		}
		if m.Score3, err = r.float64(); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeResultBlock frames one rank's gather payload: result count, then
// each pattern with its sequences-matched count and frequency. Match
// records stay local; only the aggregate travels.
func EncodeResultBlock(results []motif.Result) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(results)))
	for _, r := range results {
		putString(&buf, r.Pattern)
		putUint64(&buf, r.SequencesMatched)
		putFloat64(&buf, r.Frequency)
	}
	return buf.Bytes()
}

// DecodeResultBlock is the inverse of EncodeResultBlock.
func DecodeResultBlock(b []byte) ([]motif.Result, error) {
	r := &reader{b: b}
	count, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]motif.Result, 0, count)
	for i := uint32(0); i < count; i++ {
		var res motif.Result
		if res.Pattern, err = r.str(); err != nil {
			return nil, err
		}
		if res.SequencesMatched, err = r.uint64(); err != nil {
			return nil, err
		}
		if res.Frequency, err = r.float64(); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return out, nil
}

/* ------------------------------ primitives ------------------------------ */

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func putFloat64(buf *bytes.Buffer, v float64) {
	putUint64(buf, math.Float64bits(v))
}

func putString(buf *bytes.Buffer, s string) {
	putUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

// reader walks a block, failing on any truncation instead of panicking.
type reader struct {
	b   []byte
	off int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.b) {
		return nil, fmt.Errorf("wire: truncated block at offset %d (need %d of %d bytes)", r.off, n, len(r.b)-r.off)
	}
	out := r.b[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) float64() (float64, error) {
	v, err := r.uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (r *reader) str() (string, error) {
	n, err := r.uint32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) done() error {
	if r.off != len(r.b) {
		return fmt.Errorf("wire: %d trailing bytes after block", len(r.b)-r.off)
	}
	return nil
}
