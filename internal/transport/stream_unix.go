//go:build unix

package transport

import (
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	derr "dredis/internal/errors"
)

// rawStream reads straight from the socket descriptor.  The runtime
// poller supplies the readiness suspension; unix.Read supplies the
// single attempt.
type rawStream struct {
	conn net.Conn
	rc   syscall.RawConn
}

func newRawStream(conn net.Conn) (Stream, bool) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil, false
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return nil, false
	}
	return &rawStream{conn: conn, rc: rc}, true
}

// WaitReadable peeks one byte.  Returning false from the callback hands
// the goroutine to the poller until the descriptor becomes readable.
// Peeking first (rather than parking unconditionally) avoids missing
// data that arrived before the wait began.  A pending socket error is
// returned here: the peek clears it, so the read attempt would only
// see EOF.
func (s *rawStream) WaitReadable() error {
	var (
		peek [1]byte
		perr error
	)
	err := s.rc.Read(func(fd uintptr) bool {
		for {
			_, _, perr = unix.Recvfrom(int(fd), peek[:], unix.MSG_PEEK)
			switch {
			case perr == unix.EINTR:
				continue
			case wouldBlock(perr):
				return false
			default:
				// Data, EOF, or an error the caller must see.
				return true
			}
		}
	})
	if err != nil {
		return err
	}
	if perr != nil {
		return os.NewSyscallError("recvfrom", perr)
	}
	return nil
}

func (s *rawStream) TryRead(p []byte) (int, error) {
	var (
		n    int
		rerr error
	)
	err := s.rc.Read(func(fd uintptr) bool {
		for {
			n, rerr = unix.Read(int(fd), p)
			if rerr != unix.EINTR {
				return true
			}
		}
	})
	if err != nil {
		return 0, err
	}
	if rerr != nil {
		if wouldBlock(rerr) {
			return 0, derr.ErrWouldBlock
		}
		return 0, os.NewSyscallError("read", rerr)
	}
	return n, nil
}

// Write goes through the net.Conn so the poller handles EAGAIN on a
// full send buffer.
func (s *rawStream) Write(p []byte) (int, error) { return s.conn.Write(p) }
func (s *rawStream) RemoteAddr() net.Addr        { return s.conn.RemoteAddr() }
func (s *rawStream) Close() error                { return s.conn.Close() }

func wouldBlock(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}
