// Package engine implements the motif-matching kernel: a sliding-window
// scan of IUPAC patterns over DNA sequences and its per-motif
// aggregation, with a sequential and a worker-pool batch path.
package engine

import (
	"runtime"
	"sync"
	"time"

	"motifscan/internal/iupac"
	"motifscan/internal/motif"
)

// Engine scans sequence sets against motif sets. The ambiguity table is
// injected at construction and never mutated, so one Engine is safe for
// concurrent batches.
type Engine struct {
	table   *iupac.Table
	threads int

	mu      sync.Mutex
	timings map[string]time.Duration
}

// New creates an Engine around the given ambiguity table. threads is
// the worker-pool width for the parallel batch path; <=0 means NumCPU.
func New(table *iupac.Table, threads int) *Engine {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return &Engine{
		table:   table,
		threads: threads,
		timings: make(map[string]time.Duration),
	}
}

// Threads reports the configured worker-pool width.
func (e *Engine) Threads() int { return e.threads }

// ScanOne finds every occurrence of m in seq, one Match per offset in
// ascending order. A sequence shorter than the pattern yields nil.
func (e *Engine) ScanOne(seq motif.Sequence, m motif.Motif, seqIndex int) []motif.Match {
	offsets := e.table.FindAllOffsets(seq.Symbols, m.Pattern)
	if len(offsets) == 0 {
		return nil
	}
	out := make([]motif.Match, len(offsets))
	for i, pos := range offsets {
		out[i] = motif.Match{
			SeqIndex: seqIndex,
			Offset:   pos,
			Matched:  seq.Symbols[pos : pos+len(m.Pattern)],
		}
	}
	return out
}

// Aggregate scans every sequence for m and folds the outcome into one
// Result: SequencesMatched counts sequences with at least one hit, the
// Matches list keeps only the first hit per matching sequence, and
// Frequency is SequencesMatched over the set size (0 for an empty set).
func (e *Engine) Aggregate(seqs []motif.Sequence, m motif.Motif) motif.Result {
	start := time.Now()
	r := e.aggregate(seqs, m)
	e.setTiming("aggregate", time.Since(start))
	return r
}

func (e *Engine) aggregate(seqs []motif.Sequence, m motif.Motif) motif.Result {
	r := motif.Result{Pattern: m.Pattern}
	for i := range seqs {
		hits := e.ScanOne(seqs[i], m, i)
		if len(hits) > 0 {
			r.SequencesMatched++
			r.Matches = append(r.Matches, hits[0])
		}
	}
	r.CalcFrequency(len(seqs))
	return r
}

// AggregateBatch runs Aggregate for each motif in order; the output
// preserves motif input order. This is the ordering baseline the
// parallel path is checked against.
func (e *Engine) AggregateBatch(seqs []motif.Sequence, motifs []motif.Motif) []motif.Result {
	start := time.Now()
	out := make([]motif.Result, 0, len(motifs))
	for _, m := range motifs {
		out = append(out, e.aggregate(seqs, m))
	}
	e.setTiming("aggregate_batch", time.Since(start))
	return out
}

// AggregateBatchParallel distributes motifs over a fixed worker pool
// with pull scheduling: each worker repeatedly takes the next motif,
// aggregates it against the full sequence set, and appends its local
// results to the shared output under a mutex once its work runs out.
// The relative order of motifs in the output is NOT guaranteed; each
// individual Result is identical to the sequential path's.
func (e *Engine) AggregateBatchParallel(seqs []motif.Sequence, motifs []motif.Motif) []motif.Result {
	start := time.Now()

	jobs := make(chan int, len(motifs))
	for i := range motifs {
		jobs <- i
	}
	close(jobs)

	var (
		outMu sync.Mutex
		out   = make([]motif.Result, 0, len(motifs))
		wg    sync.WaitGroup
	)
	workers := e.threads
	if workers > len(motifs) {
		workers = len(motifs)
	}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			var local []motif.Result
			for i := range jobs {
				local = append(local, e.aggregate(seqs, motifs[i]))
			}
			outMu.Lock()
			out = append(out, local...)
			outMu.Unlock()
		}()
	}
	wg.Wait()

	e.setTiming("aggregate_batch_parallel", time.Since(start))
	return out
}

// Timings returns a copy of the per-operation wall-clock durations.
// Each entry holds the duration of the LAST call of that operation, not
// an accumulated total.
func (e *Engine) Timings() map[string]time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]time.Duration, len(e.timings))
	for k, v := range e.timings {
		out[k] = v
	}
	return out
}

func (e *Engine) setTiming(op string, d time.Duration) {
	e.mu.Lock()
	e.timings[op] = d
	e.mu.Unlock()
}
