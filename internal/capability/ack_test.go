package capability

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"
	"time"

	derr "dredis/internal/errors"
	"dredis/internal/metrics"
	"dredis/internal/session"
	"dredis/util"
)

// fakeStream replays scripted read attempts and records writes.
type fakeStream struct {
	reads    []fakeRead
	waitErr  error
	writeErr error
	written  bytes.Buffer
	closed   bool
}

type fakeRead struct {
	data string
	err  error
}

func (s *fakeStream) WaitReadable() error { return s.waitErr }

func (s *fakeStream) TryRead(p []byte) (int, error) {
	if len(s.reads) == 0 {
		return 0, nil
	}
	r := s.reads[0]
	s.reads = s.reads[1:]
	if r.err != nil {
		return 0, r.err
	}
	return copy(p, r.data), nil
}

func (s *fakeStream) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.written.Write(p)
}

func (s *fakeStream) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

func newFakeSession(fs *fakeStream) (*session.Session, *metrics.Collector, *bytes.Buffer) {
	var logBuf bytes.Buffer
	logger := util.NewLogger(1)
	logger.SetOutput(&logBuf)
	logger.SetTimestamps(false)
	m := metrics.New()
	return session.FromStream(fs, logger, m), m, &logBuf
}

func TestAck_OneReplyPerRead(t *testing.T) {
	tests := []struct {
		name     string
		reads    []fakeRead
		wantAcks int
	}{
		{"immediate close", nil, 0},
		{"single ping", []fakeRead{{data: "PING\r\n"}}, 1},
		{"three writes", []fakeRead{{data: "a"}, {data: "b"}, {data: "c"}}, 3},
		{"would block between", []fakeRead{
			{err: derr.ErrWouldBlock},
			{data: "SET k v\r\n"},
			{err: syscall.EAGAIN},
			{err: derr.ErrWouldBlock},
			{data: "GET k\r\n"},
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeStream{reads: tt.reads}
			sess, m, _ := newFakeSession(fs)

			if err := (&Ack{}).Handle(context.Background(), sess); err != nil {
				t.Fatalf("Handle: %v", err)
			}

			want := strings.Repeat(string(Reply), tt.wantAcks)
			if got := fs.written.String(); got != want {
				t.Errorf("written = %q, want %q", got, want)
			}
			if m.Acks() != int64(tt.wantAcks) {
				t.Errorf("acks = %d, want %d", m.Acks(), tt.wantAcks)
			}
			if !fs.closed {
				t.Error("stream should be closed on return")
			}
			if m.PeerCloses() != 1 {
				t.Errorf("peer closes = %d, want 1", m.PeerCloses())
			}
		})
	}
}

func TestAck_WouldBlockCounted(t *testing.T) {
	fs := &fakeStream{reads: []fakeRead{
		{err: derr.ErrWouldBlock},
		{err: derr.ErrWouldBlock},
		{data: "x"},
	}}
	sess, m, _ := newFakeSession(fs)

	if err := (&Ack{}).Handle(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	if m.WouldBlocks() != 2 {
		t.Errorf("would-blocks = %d, want 2", m.WouldBlocks())
	}
	if m.TotalBytesIn() != 1 {
		t.Errorf("bytes in = %d, want 1", m.TotalBytesIn())
	}
	if m.TotalBytesOut() != int64(len(Reply)) {
		t.Errorf("bytes out = %d, want %d", m.TotalBytesOut(), len(Reply))
	}
}

func TestAck_Failures(t *testing.T) {
	reset := syscall.ECONNRESET
	tests := []struct {
		name   string
		fs     *fakeStream
		wantOp string
	}{
		{"read error", &fakeStream{reads: []fakeRead{{data: "a"}, {err: reset}}}, derr.OpRead},
		{"write error", &fakeStream{reads: []fakeRead{{data: "a"}}, writeErr: syscall.EPIPE}, derr.OpWrite},
		{"wait error", &fakeStream{waitErr: reset}, derr.OpWait},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, _, _ := newFakeSession(tt.fs)
			err := (&Ack{}).Handle(context.Background(), sess)

			var ne *derr.NetworkError
			if !errors.As(err, &ne) {
				t.Fatalf("expected *NetworkError, got %v", err)
			}
			if ne.Op != tt.wantOp {
				t.Errorf("op = %q, want %q", ne.Op, tt.wantOp)
			}
			if !tt.fs.closed {
				t.Error("stream should be closed on failure")
			}
		})
	}
}

func TestAck_LogsReadAndClose(t *testing.T) {
	fs := &fakeStream{reads: []fakeRead{{data: "PING\r\n"}}}
	sess, _, logBuf := newFakeSession(fs)

	if err := (&Ack{}).Handle(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	out := logBuf.String()
	for _, want := range []string{"received", "bytes=6", "connection closed by peer", "remote=127.0.0.1:50000"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestAck_CustomBufferSize(t *testing.T) {
	// A 4-byte buffer splits one write into two reads and two acks.
	fs := &fakeStream{reads: []fakeRead{{data: "PING"}, {data: "\r\n"}}}
	sess, m, _ := newFakeSession(fs)

	if err := (&Ack{BufSize: 4}).Handle(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	if m.Acks() != 2 {
		t.Errorf("acks = %d, want 2", m.Acks())
	}
}

func TestAck_Pipe(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	logger := util.NewLogger(0)
	sess := session.New(server, logger, metrics.New())

	done := make(chan error, 1)
	go func() {
		done <- (&Ack{}).Handle(context.Background(), sess)
	}()

	buf := make([]byte, len(Reply))
	for i := 0; i < 3; i++ {
		if _, err := client.Write([]byte("PING\r\n")); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		client.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
		if _, err := io.ReadFull(client, buf); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if !bytes.Equal(buf, Reply) {
			t.Fatalf("reply %d = %q, want %q", i, buf, Reply)
		}
	}

	client.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Handle: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after peer close")
	}
}
