package cluster

import (
	"fmt"
	"sync"
	"time"

	"motifscan/internal/logger"
	"motifscan/internal/motif"
	"motifscan/internal/wire"
)

// Span is one rank's contiguous share of N work items.
type Span struct {
	Start int
	Count int
}

// Partition computes rank's share of n items over total ranks: the
// first n%total ranks carry one extra item, spans are contiguous and
// disjoint, and their counts sum to n. total < 1 or an out-of-range
// rank is a programmer error and panics.
func Partition(n, rank, total int) Span {
	if total < 1 {
		panic(fmt.Sprintf("cluster: partition over %d ranks", total))
	}
	if rank < 0 || rank >= total {
		panic(fmt.Sprintf("cluster: rank %d out of [0,%d)", rank, total))
	}
	base := n / total
	extra := n % total
	start := rank*base + min(rank, extra)
	count := base
	if rank < extra {
		count++
	}
	return Span{Start: start, Count: count}
}

// OpStats is the accumulated traffic and wall-clock cost of one
// collective operation.
type OpStats struct {
	Bytes int64
	Time  time.Duration
}

// Coordinator runs the collective operations of a run over a Transport.
// The same methods execute on every rank; behavior forks internally on
// whether this rank is the coordinator (rank 0).
type Coordinator struct {
	tr Transport

	mu    sync.Mutex
	stats map[string]OpStats
}

// New wraps a connected transport.
func New(tr Transport) *Coordinator {
	return &Coordinator{tr: tr, stats: make(map[string]OpStats)}
}

func (c *Coordinator) Rank() int           { return c.tr.Rank() }
func (c *Coordinator) Size() int           { return c.tr.Size() }
func (c *Coordinator) IsCoordinator() bool { return c.tr.Rank() == 0 }

// ScatterSequences hands every rank its partition of the full sequence
// set. On the coordinator all must hold the whole set and the local
// slice comes back without touching the wire; on a worker all is
// ignored and the local slice is decoded off the coordinator's block.
func (c *Coordinator) ScatterSequences(all []motif.Sequence) ([]motif.Sequence, error) {
	start := time.Now()
	var (
		local []motif.Sequence
		moved int64
	)

	if c.IsCoordinator() {
		n := len(all)
		for dest := 1; dest < c.Size(); dest++ {
			span := Partition(n, dest, c.Size())
			blob := wire.EncodeSequenceBlock(n, all[span.Start:span.Start+span.Count])
			if err := c.tr.Send(dest, blob); err != nil {
				return nil, fmt.Errorf("scatter to rank %d: %w", dest, err)
			}
			moved += int64(len(blob))
		}
		span := Partition(n, 0, c.Size())
		local = all[span.Start : span.Start+span.Count]
		logger.Debug("scatter: %d sequences over %d ranks, %d kept locally", n, c.Size(), span.Count)
	} else {
		blob, err := c.tr.Recv(0)
		if err != nil {
			return nil, fmt.Errorf("scatter recv: %w", err)
		}
		total, seqs, err := wire.DecodeSequenceBlock(blob)
		if err != nil {
			return nil, fmt.Errorf("scatter decode: %w", err)
		}
		moved = int64(len(blob))
		local = seqs
		logger.Debug("scatter: received %d of %d sequences", len(seqs), total)
	}

	c.account("scatter_sequences", moved, time.Since(start))
	return local, nil
}

// BroadcastMotifs replicates the motif list to every rank in original
// order. The coordinator's copy never round-trips through the wire but
// is the same list workers decode.
func (c *Coordinator) BroadcastMotifs(all []motif.Motif) ([]motif.Motif, error) {
	start := time.Now()
	var (
		out   []motif.Motif
		moved int64
	)

	if c.IsCoordinator() {
		blob := wire.EncodeMotifBlock(all)
		for dest := 1; dest < c.Size(); dest++ {
			if err := c.tr.Send(dest, blob); err != nil {
				return nil, fmt.Errorf("broadcast to rank %d: %w", dest, err)
			}
			moved += int64(len(blob))
		}
		out = all
	} else {
		blob, err := c.tr.Recv(0)
		if err != nil {
			return nil, fmt.Errorf("broadcast recv: %w", err)
		}
		ms, err := wire.DecodeMotifBlock(blob)
		if err != nil {
			return nil, fmt.Errorf("broadcast decode: %w", err)
		}
		moved = int64(len(blob))
		out = ms
	}

	c.account("broadcast_motifs", moved, time.Since(start))
	return out, nil
}

// GatherResults collects every rank's local results on the coordinator:
// its own results first, then each worker's block in ascending rank
// order, each block in its sender's emission order. Workers send and
// get nil back.
func (c *Coordinator) GatherResults(local []motif.Result) ([]motif.Result, error) {
	start := time.Now()
	var (
		all   []motif.Result
		moved int64
	)

	if c.IsCoordinator() {
		all = append(all, local...)
		for src := 1; src < c.Size(); src++ {
			blob, err := c.tr.Recv(src)
			if err != nil {
				return nil, fmt.Errorf("gather from rank %d: %w", src, err)
			}
			rs, err := wire.DecodeResultBlock(blob)
			if err != nil {
				return nil, fmt.Errorf("gather decode from rank %d: %w", src, err)
			}
			moved += int64(len(blob))
			all = append(all, rs...)
		}
		logger.Debug("gather: %d results over %d ranks", len(all), c.Size())
	} else {
		blob := wire.EncodeResultBlock(local)
		if err := c.tr.Send(0, blob); err != nil {
			return nil, fmt.Errorf("gather send: %w", err)
		}
		moved = int64(len(blob))
	}

	c.account("gather_results", moved, time.Since(start))
	return all, nil
}

// Synchronize blocks until every rank reaches it.
func (c *Coordinator) Synchronize() error {
	start := time.Now()
	if err := c.tr.Barrier(); err != nil {
		return fmt.Errorf("barrier: %w", err)
	}
	c.account("synchronize", 0, time.Since(start))
	return nil
}

// CommunicationStats returns a copy of the per-operation byte/time
// counters, accumulated across calls.
func (c *Coordinator) CommunicationStats() map[string]OpStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]OpStats, len(c.stats))
	for k, v := range c.stats {
		out[k] = v
	}
	return out
}

func (c *Coordinator) account(op string, bytes int64, d time.Duration) {
	c.mu.Lock()
	s := c.stats[op]
	s.Bytes += bytes
	s.Time += d
	c.stats[op] = s
	c.mu.Unlock()
}
