// Package cluster implements the process-level coordination of a run: a
// deterministic partition of the sequence set across ranks and the
// scatter/broadcast/gather/barrier collectives carrying the wire blocks
// between peers. Rank 0 is the coordinator.
package cluster

import "errors"

// Transport is the blocking message substrate the collectives run over.
// Send blocks until the destination posts its matching Recv and vice
// versa; there are no timeouts and no retries. Any transport error is
// fatal to the whole run.
type Transport interface {
	Rank() int
	Size() int
	Send(to int, payload []byte) error
	Recv(from int) ([]byte, error)
	Barrier() error
	Close() error
}

// ErrNoPeer is returned for a Send/Recv naming a rank the transport
// cannot reach.
var ErrNoPeer = errors.New("cluster: no such peer")

// single is the size-1 transport backing a plain local run. Send and
// Recv are never legal: there is nobody else.
type single struct{}

// NewSingle returns the rank-0, size-1 transport for single-process runs.
func NewSingle() Transport { return single{} }

func (single) Rank() int                { return 0 }
func (single) Size() int                { return 1 }
func (single) Send(int, []byte) error   { return ErrNoPeer }
func (single) Recv(int) ([]byte, error) { return nil, ErrNoPeer }
func (single) Barrier() error           { return nil }
func (single) Close() error             { return nil }
