package orchestrator

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motifscan/internal/cluster"
	"motifscan/internal/motif"
)

func corpus() []motif.Sequence {
	return []motif.Sequence{
		{ID: "seq1", Symbols: strings.Repeat("ATGC", 10)},
		{ID: "seq2", Symbols: strings.Repeat("TTTT", 10)},
		{ID: "seq3", Symbols: strings.Repeat("GGGG", 10)},
		{ID: "seq4", Symbols: strings.Repeat("CCCC", 10)},
		{ID: "seq5", Symbols: strings.Repeat("ATGC", 10)},
	}
}

func TestProcessBeforeInitialize(t *testing.T) {
	p := New()
	_, err := p.Process(nil, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSingleRankRun(t *testing.T) {
	p := New()
	require.NoError(t, p.Initialize(Options{Threads: 2}))
	defer func() { _ = p.Finalize() }()

	require.Equal(t, 0, p.Rank())
	require.Equal(t, 1, p.Size())

	results, err := p.Process(corpus(), []motif.Motif{{Pattern: "ATGCATGC"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(2), results[0].SequencesMatched)
	assert.Equal(t, 0.4, results[0].Frequency)

	perf := p.PerfStats()
	assert.Contains(t, perf, "process")
	assert.Contains(t, perf, "local_match")
}

func TestDoubleInitialize(t *testing.T) {
	p := New()
	require.NoError(t, p.Initialize(Options{}))
	assert.Error(t, p.Initialize(Options{}))
	_ = p.Finalize()
}

func TestFinalizeIdempotent(t *testing.T) {
	p := New()
	require.NoError(t, p.Initialize(Options{}))
	require.NoError(t, p.Finalize())
	require.NoError(t, p.Finalize())

	// Uninitialized finalize is also harmless.
	q := New()
	require.NoError(t, q.Finalize())

	_, err := p.Process(nil, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestMultiRankRun(t *testing.T) {
	const ranks = 3
	trs := cluster.NewMemCluster(ranks)
	motifs := []motif.Motif{
		{Pattern: "ATGCATGC"},
		{Pattern: "TTTTTTTT"},
	}

	var (
		wg       sync.WaitGroup
		combined []motif.Result
	)
	wg.Add(ranks)
	for r := 0; r < ranks; r++ {
		go func(r int) {
			defer wg.Done()
			p := New()
			require.NoError(t, p.Initialize(Options{Threads: 2, Transport: trs[r]}))
			defer func() { _ = p.Finalize() }()

			var (
				out []motif.Result
				err error
			)
			if r == 0 {
				out, err = p.Process(corpus(), motifs)
			} else {
				out, err = p.Process(nil, nil)
			}
			require.NoError(t, err)
			if r == 0 {
				combined = out
			} else {
				assert.Nil(t, out, "workers get no combined results")
			}
		}(r)
	}
	wg.Wait()

	// Every rank reports one result per motif: 3 ranks x 2 motifs.
	require.Len(t, combined, ranks*len(motifs))

	// Global sequences-matched per pattern must cover the whole corpus
	// exactly once regardless of how the slices landed.
	perPattern := map[string]uint64{}
	for _, r := range combined {
		perPattern[r.Pattern] += r.SequencesMatched
	}
	assert.Equal(t, uint64(2), perPattern["ATGCATGC"])
	assert.Equal(t, uint64(1), perPattern["TTTTTTTT"])
}
