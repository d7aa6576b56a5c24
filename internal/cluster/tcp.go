package cluster

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/google/uuid"

	"motifscan/internal/logger"
)

// TCP transport: a star topology. The coordinator listens and waits for
// a fixed number of workers; each worker dials in, presents the magic,
// and is handed the run token, its rank and the cluster size. Workers
// only ever talk to rank 0.

var magic = [5]byte{'M', 'S', 'C', 'N', '1'}

const (
	frameData    = uint32(1)
	frameBarrier = uint32(2)
	frameRelease = uint32(3)
)

// Listener is a pending coordinator endpoint. Splitting Listen from
// Accept lets callers bind port 0 and learn the address before workers
// dial.
type Listener struct {
	ln    net.Listener
	token string
}

// Listen binds the coordinator endpoint and mints the run token.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cluster: listen %s: %w", addr, err)
	}
	return &Listener{ln: ln, token: uuid.NewString()}, nil
}

// Addr returns the bound address, for workers to dial.
func (l *Listener) Addr() string { return l.ln.Addr().String() }

// Accept blocks until exactly workers peers have joined, then returns
// the rank-0 transport. The listener is consumed either way.
func (l *Listener) Accept(workers int) (Transport, error) {
	defer func() { _ = l.ln.Close() }()
	if workers < 1 {
		return nil, fmt.Errorf("cluster: need at least one worker, got %d", workers)
	}
	size := workers + 1
	t := &tcpCoordinator{size: size, token: l.token, conns: make([]net.Conn, size)}
	logger.Info("run %s: waiting for %d workers on %s", l.token, workers, l.Addr())

	for rank := 1; rank < size; rank++ {
		conn, err := l.ln.Accept()
		if err != nil {
			t.closeAll()
			return nil, fmt.Errorf("cluster: accept: %w", err)
		}
		if err := t.handshake(conn, rank); err != nil {
			t.closeAll()
			_ = conn.Close()
			return nil, err
		}
		t.conns[rank] = conn
		logger.Debug("run %s: rank %d joined from %s", l.token, rank, conn.RemoteAddr())
	}
	return t, nil
}

// ListenAndAccept is the one-shot convenience wrapper.
func ListenAndAccept(addr string, workers int) (Transport, error) {
	l, err := Listen(addr)
	if err != nil {
		return nil, err
	}
	return l.Accept(workers)
}

type tcpCoordinator struct {
	size  int
	token string
	conns []net.Conn // index by rank, [0] unused
}

func (t *tcpCoordinator) handshake(conn net.Conn, rank int) error {
	var got [5]byte
	if _, err := io.ReadFull(conn, got[:]); err != nil {
		return fmt.Errorf("cluster: handshake read: %w", err)
	}
	if got != magic {
		return fmt.Errorf("cluster: bad magic from %s", conn.RemoteAddr())
	}
	var buf []byte
	buf = appendUint32(buf, uint32(len(t.token)))
	buf = append(buf, t.token...)
	buf = appendUint32(buf, uint32(rank))
	buf = appendUint32(buf, uint32(t.size))
	if _, err := conn.Write(buf); err != nil {
		return fmt.Errorf("cluster: handshake write: %w", err)
	}
	return nil
}

func (t *tcpCoordinator) Rank() int { return 0 }
func (t *tcpCoordinator) Size() int { return t.size }

func (t *tcpCoordinator) conn(rank int) (net.Conn, error) {
	if rank < 1 || rank >= t.size {
		return nil, fmt.Errorf("%w: rank %d", ErrNoPeer, rank)
	}
	return t.conns[rank], nil
}

func (t *tcpCoordinator) Send(to int, payload []byte) error {
	c, err := t.conn(to)
	if err != nil {
		return err
	}
	return writeFrame(c, frameData, payload)
}

func (t *tcpCoordinator) Recv(from int) ([]byte, error) {
	c, err := t.conn(from)
	if err != nil {
		return nil, err
	}
	return readFrame(c, frameData)
}

// Barrier collects one barrier frame from every worker, then releases
// them all. No worker proceeds before the last one arrives.
func (t *tcpCoordinator) Barrier() error {
	for rank := 1; rank < t.size; rank++ {
		if _, err := readFrame(t.conns[rank], frameBarrier); err != nil {
			return err
		}
	}
	for rank := 1; rank < t.size; rank++ {
		if err := writeFrame(t.conns[rank], frameRelease, nil); err != nil {
			return err
		}
	}
	return nil
}

func (t *tcpCoordinator) Close() error {
	t.closeAll()
	return nil
}

func (t *tcpCoordinator) closeAll() {
	for _, c := range t.conns {
		if c != nil {
			_ = c.Close()
		}
	}
}

type tcpWorker struct {
	rank  int
	size  int
	token string
	conn  net.Conn
}

// Dial joins a run as a worker and blocks until the coordinator assigns
// a rank.
func Dial(addr string) (Transport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cluster: dial %s: %w", addr, err)
	}
	if _, err := conn.Write(magic[:]); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("cluster: handshake write: %w", err)
	}
	tokenLen, err := readUint32(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("cluster: handshake read: %w", err)
	}
	tok := make([]byte, tokenLen)
	if _, err := io.ReadFull(conn, tok); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("cluster: handshake read: %w", err)
	}
	rank, err := readUint32(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("cluster: handshake read: %w", err)
	}
	size, err := readUint32(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("cluster: handshake read: %w", err)
	}
	logger.Info("run %s: joined as rank %d of %d", string(tok), rank, size)
	return &tcpWorker{rank: int(rank), size: int(size), token: string(tok), conn: conn}, nil
}

func (t *tcpWorker) Rank() int { return t.rank }
func (t *tcpWorker) Size() int { return t.size }

func (t *tcpWorker) Send(to int, payload []byte) error {
	if to != 0 {
		return fmt.Errorf("%w: worker can only reach the coordinator, not rank %d", ErrNoPeer, to)
	}
	return writeFrame(t.conn, frameData, payload)
}

func (t *tcpWorker) Recv(from int) ([]byte, error) {
	if from != 0 {
		return nil, fmt.Errorf("%w: worker can only reach the coordinator, not rank %d", ErrNoPeer, from)
	}
	return readFrame(t.conn, frameData)
}

func (t *tcpWorker) Barrier() error {
	if err := writeFrame(t.conn, frameBarrier, nil); err != nil {
		return err
	}
	_, err := readFrame(t.conn, frameRelease)
	return err
}

func (t *tcpWorker) Close() error { return t.conn.Close() }

/* ------------------------------- framing -------------------------------- */

func writeFrame(c net.Conn, kind uint32, payload []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], kind)
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	if _, err := c.Write(hdr[:]); err != nil {
		return fmt.Errorf("cluster: send: %w", err)
	}
	if len(payload) > 0 {
		if _, err := c.Write(payload); err != nil {
			return fmt.Errorf("cluster: send: %w", err)
		}
	}
	return nil
}

func readFrame(c net.Conn, want uint32) ([]byte, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(c, hdr[:]); err != nil {
		return nil, fmt.Errorf("cluster: recv: %w", err)
	}
	kind := binary.BigEndian.Uint32(hdr[0:4])
	length := binary.BigEndian.Uint32(hdr[4:8])
	payload := make([]byte, length)
	if _, err := io.ReadFull(c, payload); err != nil {
		return nil, fmt.Errorf("cluster: recv: %w", err)
	}
	if kind != want {
		return nil, fmt.Errorf("cluster: protocol error: frame kind %d, want %d", kind, want)
	}
	return payload, nil
}

func readUint32(c net.Conn) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(c, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}
