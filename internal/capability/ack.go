package capability

import (
	"context"

	derr "dredis/internal/errors"
	"dredis/internal/session"
	"dredis/internal/transport"
	"dredis/util"
)

// Reply is written back after every non-empty read, whatever was sent.
var Reply = []byte("+OK\r\n")

// Ack is the stub protocol: read whatever arrives, log it, answer with
// Reply.  Nothing is parsed and nothing is stored.
type Ack struct {
	// BufSize is the read buffer capacity; zero means util.DefaultBufSize.
	BufSize int
}

// Handle runs the read/acknowledge loop.  The context is not consulted:
// a connection lives until the peer closes it or I/O fails.
func (a *Ack) Handle(_ context.Context, sess *session.Session) error {
	defer sess.Close()

	buf, release := a.buffer()
	defer release()

	for {
		if err := sess.Stream.WaitReadable(); err != nil {
			return derr.Wrap(derr.OpWait, sess.Remote, err)
		}

		res := transport.Read(sess.Stream, buf)
		switch res.Outcome {
		case transport.WouldBlock:
			sess.Metrics.WouldBlock()
			continue

		case transport.Closed:
			sess.Metrics.PeerClosed()
			sess.Logger.Info("connection closed by peer")
			return nil

		case transport.Failed:
			return derr.Wrap(derr.OpRead, sess.Remote, res.Err)
		}

		sess.Metrics.BytesReceived(int64(res.N))
		sess.Logger.Received(res.N, buf[:res.N])

		if err := transport.WriteFull(sess.Stream, Reply); err != nil {
			return derr.Wrap(derr.OpWrite, sess.Remote, err)
		}
		sess.Metrics.BytesSent(int64(len(Reply)))
		sess.Metrics.AckSent()
	}
}

// buffer returns the scratch buffer and a func that gives it back.
// Default-sized buffers come from the shared pool.
func (a *Ack) buffer() ([]byte, func()) {
	size := a.BufSize
	if size <= 0 || size == util.DefaultBufSize {
		pb := util.GetBuf()
		return *pb, func() { util.PutBuf(pb) }
	}
	return make([]byte, size), func() {}
}
