package cluster

import (
	"fmt"
	"sync"
)

// memTransport connects n ranks inside one process over unbuffered
// channels, preserving the rendezvous semantics of the real transport.
// Used by tests and by any embedding that wants a multi-rank run
// without sockets.
type memTransport struct {
	rank    int
	size    int
	links   [][]chan []byte // links[from][to]
	barrier *memBarrier
}

// NewMemCluster returns n connected transports, one per rank.
func NewMemCluster(n int) []Transport {
	if n < 1 {
		panic("cluster: mem cluster needs at least one rank")
	}
	links := make([][]chan []byte, n)
	for from := range links {
		links[from] = make([]chan []byte, n)
		for to := range links[from] {
			if to != from {
				links[from][to] = make(chan []byte) // unbuffered: rendezvous
			}
		}
	}
	bar := newMemBarrier(n)
	out := make([]Transport, n)
	for r := 0; r < n; r++ {
		out[r] = &memTransport{rank: r, size: n, links: links, barrier: bar}
	}
	return out
}

func (t *memTransport) Rank() int { return t.rank }
func (t *memTransport) Size() int { return t.size }

func (t *memTransport) Send(to int, payload []byte) error {
	if to < 0 || to >= t.size || to == t.rank {
		return fmt.Errorf("%w: send %d -> %d", ErrNoPeer, t.rank, to)
	}
	t.links[t.rank][to] <- payload
	return nil
}

func (t *memTransport) Recv(from int) ([]byte, error) {
	if from < 0 || from >= t.size || from == t.rank {
		return nil, fmt.Errorf("%w: recv %d <- %d", ErrNoPeer, t.rank, from)
	}
	return <-t.links[from][t.rank], nil
}

func (t *memTransport) Barrier() error {
	t.barrier.wait()
	return nil
}

func (t *memTransport) Close() error { return nil }

// memBarrier is a reusable generation-counting barrier.
type memBarrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	n     int
	count int
	gen   int
}

func newMemBarrier(n int) *memBarrier {
	b := &memBarrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *memBarrier) wait() {
	b.mu.Lock()
	gen := b.gen
	b.count++
	if b.count == b.n {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
		b.mu.Unlock()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
	b.mu.Unlock()
}
