package transport

import (
	"io"

	derr "dredis/internal/errors"
)

// Outcome tags the result of one read attempt.
type Outcome int

const (
	// Data means 1..len(buf) bytes were read.
	Data Outcome = iota
	// WouldBlock means nothing was available; wait and try again.
	WouldBlock
	// Closed means the peer closed its write side (a zero-byte read).
	Closed
	// Failed means any other error; the connection is finished.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Data:
		return "data"
	case WouldBlock:
		return "would-block"
	case Closed:
		return "closed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ReadResult is the tagged outcome of [Read].  N is set only for Data
// and Err only for Failed.
type ReadResult struct {
	Outcome Outcome
	N       int
	Err     error
}

// Read makes one read attempt on s and classifies it.  Short reads are
// data like any other; they are never retried as incomplete.
func Read(s Stream, buf []byte) ReadResult {
	n, err := s.TryRead(buf)
	switch {
	case err == nil && n > 0:
		return ReadResult{Outcome: Data, N: n}
	case err == nil:
		return ReadResult{Outcome: Closed}
	case derr.IsWouldBlock(err):
		return ReadResult{Outcome: WouldBlock}
	default:
		return ReadResult{Outcome: Failed, Err: err}
	}
}

// WriteFull writes all of p, retrying short writes until everything is
// sent or a write fails.
func WriteFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
