package dispatch

import (
	"log"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/U22-2025/WIP-sub001/pkg/packet"
	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// maxDatagramSize is the largest UDP payload this dispatcher considers,
// safely below the internet MTU.
const maxDatagramSize = 1024

// socket is one pooled UDP connection. It is not checked out exclusively:
// Pool.Get hands sockets out round-robin, so several logical requests may
// send and wait on the same socket at once. A single background reader
// goroutine demultiplexes
// incoming datagrams by packet_id to whichever logical request is
// currently waiting for that ID; a datagram for an ID nobody's waiting on
// is logged and dropped.
type socket struct {
	conn *net.UDPConn

	mu      sync.Mutex
	pending map[uint16]chan []byte

	debug bool
}

func newSocket(raddr *net.UDPAddr, debug bool) (*socket, error) {
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, werrors.IOf(werrors.ReasonBindFailure, err, "dial udp %v", raddr)
	}
	if err := tuneSocket(conn); err != nil && debug {
		log.Printf("wip: socket tuning failed (continuing): %v", err)
	}
	s := &socket{conn: conn, pending: make(map[uint16]chan []byte), debug: debug}
	go s.readLoop()
	return s, nil
}

// tuneSocket raises the receive buffer size via a raw syscall, the way the
// uping/sockstats lineage reaches past net.UDPConn's portable API for
// socket-option tuning; failure here is non-fatal (best-effort).
func tuneSocket(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, maxDatagramSize*64)
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return sockErr
}

func (s *socket) readLoop() {
	buf := make([]byte, maxDatagramSize)
	for {
		n, err := s.conn.Read(buf)
		if err != nil {
			return // socket closed; pool is tearing down
		}
		if n < 2 {
			continue
		}
		id := uint16(packet.Extract(buf[:n], 4, 12))
		s.mu.Lock()
		ch, ok := s.pending[id]
		s.mu.Unlock()
		if !ok {
			if s.debug {
				log.Printf("wip: discarding stray datagram for packet_id=%d (not awaited)", id)
			}
			continue
		}
		cp := make([]byte, n)
		copy(cp, buf[:n])
		select {
		case ch <- cp:
		default:
			// a previous delivery is still unread; drop rather than block the
			// reader loop for every other in-flight request sharing this socket.
		}
	}
}

// register installs a buffered channel that will receive the next datagram
// whose packet_id equals id.
func (s *socket) register(id uint16) chan []byte {
	ch := make(chan []byte, 1)
	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()
	return ch
}

// unregister removes the waiter for id, whether or not it ever fired.
func (s *socket) unregister(id uint16) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

func (s *socket) send(b []byte) error {
	_, err := s.conn.Write(b)
	if err != nil {
		return werrors.IOf(werrors.ReasonSendFailure, err, "udp write")
	}
	return nil
}

func (s *socket) close() error {
	return s.conn.Close()
}

// Pool is the fixed-size vector of bound UDP sockets handed out
// round-robin. Sockets are never closed during the
// dispatcher's lifetime; "returning" one is implicit once the caller's
// logical request is done with it.
type Pool struct {
	sockets []*socket
	idx     uint32
}

// NewPool dials size UDP sockets to raddr.
func NewPool(size int, raddr *net.UDPAddr, debug bool) (*Pool, error) {
	if size <= 0 {
		size = 1
	}
	p := &Pool{sockets: make([]*socket, 0, size)}
	for i := 0; i < size; i++ {
		s, err := newSocket(raddr, debug)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.sockets = append(p.sockets, s)
	}
	return p, nil
}

// Get hands out the next socket in round-robin order.
func (p *Pool) Get() *socket {
	i := atomic.AddUint32(&p.idx, 1)
	return p.sockets[i%uint32(len(p.sockets))]
}

// Close tears down every pooled socket.
func (p *Pool) Close() error {
	var first error
	for _, s := range p.sockets {
		if err := s.close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
