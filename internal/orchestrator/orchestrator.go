// Package orchestrator sequences a motif-finding run: scatter the
// sequences, broadcast the motifs, scan the local slice in parallel,
// gather every rank's results. One Processor owns the cluster runtime
// and the match engine for the lifetime of the process.
package orchestrator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"motifscan/internal/cluster"
	"motifscan/internal/engine"
	"motifscan/internal/iupac"
	"motifscan/internal/logger"
	"motifscan/internal/motif"
)

// ErrNotInitialized is returned by Process before Initialize succeeds.
var ErrNotInitialized = errors.New("orchestrator: not initialized")

// Options configure Initialize.
type Options struct {
	// Threads is the per-process worker-pool width; <=0 means NumCPU.
	Threads int
	// Transport is the connected cluster runtime. Nil means a plain
	// single-process run.
	Transport cluster.Transport
}

// Processor is the per-process orchestrator. Lifecycle is linear:
// New -> Initialize -> Process (any number of times) -> Finalize.
type Processor struct {
	coord *cluster.Coordinator
	eng   *engine.Engine
	tr    cluster.Transport

	mu          sync.Mutex
	initialized bool
	finalized   bool
	perf        map[string]time.Duration
}

// New returns an uninitialized Processor.
func New() *Processor {
	return &Processor{perf: make(map[string]time.Duration)}
}

// Initialize attaches the cluster runtime and builds the ambiguity
// table and match engine. It must be called exactly once before
// Process.
func (p *Processor) Initialize(opts Options) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return errors.New("orchestrator: already initialized")
	}
	if p.finalized {
		return errors.New("orchestrator: already finalized")
	}

	tr := opts.Transport
	if tr == nil {
		tr = cluster.NewSingle()
	}
	p.tr = tr
	p.coord = cluster.New(tr)
	p.eng = engine.New(iupac.NewTable(), opts.Threads)
	p.initialized = true

	if p.coord.IsCoordinator() {
		logger.Info("initialized: %d ranks, %d threads per rank", p.coord.Size(), p.eng.Threads())
	}
	return nil
}

// Rank reports this process's rank; valid after Initialize.
func (p *Processor) Rank() int { return p.coord.Rank() }

// Size reports the cluster size; valid after Initialize.
func (p *Processor) Size() int { return p.coord.Size() }

// Process runs the full pipeline over already-parsed inputs. Every rank
// scans the complete motif set against only its own sequence slice; the
// coordinator returns the combined results, workers return nil. The
// inputs only matter on the coordinator; workers receive theirs off the
// wire.
func (p *Processor) Process(seqs []motif.Sequence, motifs []motif.Motif) ([]motif.Result, error) {
	p.mu.Lock()
	ready := p.initialized && !p.finalized
	p.mu.Unlock()
	if !ready {
		return nil, ErrNotInitialized
	}

	total := time.Now()
	logger.Section("distribute")

	local, err := p.coord.ScatterSequences(seqs)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	ms, err := p.coord.BroadcastMotifs(motifs)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	logger.Section("match")
	matchStart := time.Now()
	localResults := p.eng.AggregateBatchParallel(local, ms)
	p.setPerf("local_match", time.Since(matchStart))
	logger.Debug("rank %d: %d results from %d local sequences", p.coord.Rank(), len(localResults), len(local))

	logger.Section("gather")
	all, err := p.coord.GatherResults(localResults)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	p.setPerf("process", time.Since(total))
	return all, nil
}

// Finalize releases the cluster runtime. Safe to call more than once;
// only the first call closes anything.
func (p *Processor) Finalize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finalized || !p.initialized {
		p.finalized = true
		return nil
	}
	p.finalized = true
	return p.tr.Close()
}

// PerfStats returns a copy of the per-phase wall-clock durations of the
// last Process call.
func (p *Processor) PerfStats() map[string]time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]time.Duration, len(p.perf))
	for k, v := range p.perf {
		out[k] = v
	}
	return out
}

// CommunicationStats exposes the coordinator's accumulated byte/time
// counters; valid after Initialize.
func (p *Processor) CommunicationStats() map[string]cluster.OpStats {
	return p.coord.CommunicationStats()
}

// EngineTimings exposes the match engine's last-call durations; valid
// after Initialize.
func (p *Processor) EngineTimings() map[string]time.Duration {
	return p.eng.Timings()
}

func (p *Processor) setPerf(op string, d time.Duration) {
	p.mu.Lock()
	p.perf[op] = d
	p.mu.Unlock()
}
