package session

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/packetdp/vppclient/transport"
)

// writeFrame writes one framed payload (header + body) to conn, as the
// dataplane side of the pipe would.
func writeFrame(t *testing.T, conn net.Conn, msgID uint16, ctx uint32, body []byte) {
	t.Helper()
	payload := encodePreambleBytes(msgID, ctx, body)
	header := EncodeFrameHeader(uint32(len(payload)))
	if _, err := conn.Write(header); err != nil {
		t.Error(err)
		return
	}
	if _, err := conn.Write(payload); err != nil {
		t.Error(err)
		return
	}
}

// encodePreambleBytes builds a payload with a preamble followed by body,
// the inverse of DecodePreamble. Nothing in this package needs to encode a
// preamble outbound, so this exists only to synthesize test fixtures.
func encodePreambleBytes(msgID uint16, ctx uint32, body []byte) []byte {
	buf := make([]byte, PreambleSize+len(body))
	buf[0] = byte(msgID >> 8)
	buf[1] = byte(msgID)
	buf[2] = byte(ctx >> 24)
	buf[3] = byte(ctx >> 16)
	buf[4] = byte(ctx >> 8)
	buf[5] = byte(ctx)
	copy(buf[PreambleSize:], body)
	return buf
}

func newTestSession(t *testing.T) (*Session, net.Conn, func()) {
	t.Helper()
	client, server := net.Pipe()
	s := New(transport.New(client))
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	cleanup := func() {
		cancel()
		s.Close()
		server.Close()
	}
	return s, server, cleanup
}

func TestRecvDeliversMatchingContext(t *testing.T) {
	s, server, cleanup := newTestSession(t)
	defer cleanup()

	go writeFrame(t, server, 42, 7, []byte("reply-body"))

	entries, err := s.Recv(context.Background(), 7, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Preamble.MsgID != 42 {
		t.Fatalf("got msg id %d, want 42", entries[0].Preamble.MsgID)
	}
}

func TestRecvUnknownContextRetainedUntilMatched(t *testing.T) {
	s, server, cleanup := newTestSession(t)
	defer cleanup()

	// A reply for context 1 arrives before anyone calls Recv(ctx=1, ...).
	go writeFrame(t, server, 1, 1, []byte("early"))

	// Give the reader task a moment to deposit it.
	time.Sleep(20 * time.Millisecond)

	entries, err := s.Recv(context.Background(), 1, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || string(entries[0].Payload[PreambleSize:]) != "early" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestRecvTimeoutLeavesFutureReplyIntact(t *testing.T) {
	s, server, cleanup := newTestSession(t)
	defer cleanup()

	_, err := s.Recv(context.Background(), 99, 30*time.Millisecond)
	if err != ErrTimeout {
		t.Fatalf("got %v, want ErrTimeout", err)
	}

	go writeFrame(t, server, 5, 99, []byte("late"))

	entries, err := s.Recv(context.Background(), 99, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
}

func TestSweepDiscardsOnlyStaleContexts(t *testing.T) {
	c := newReplyCache()
	old := Entry{Preamble: Preamble{Context: 1}, Enqueued: time.Now().Add(-time.Hour)}
	fresh := Entry{Preamble: Preamble{Context: 2}, Enqueued: time.Now()}
	c.deposit(old)
	c.deposit(fresh)

	c.sweep(time.Now())

	if _, ok := c.take(1); ok {
		t.Fatal("stale context 1 should have been swept")
	}
	if _, ok := c.take(2); !ok {
		t.Fatal("fresh context 2 should have survived the sweep")
	}
}

func TestRecvSingleRejectsWrongMsgID(t *testing.T) {
	s, server, cleanup := newTestSession(t)
	defer cleanup()

	go writeFrame(t, server, 11, 3, []byte("body"))

	_, err := s.RecvSingle(context.Background(), 3, 12, time.Second)
	if err == nil {
		t.Fatal("expected MsgIDMismatchError")
	}
	if _, ok := err.(*MsgIDMismatchError); !ok {
		t.Fatalf("got %T, want *MsgIDMismatchError", err)
	}
}

func TestNextContextMonotonic(t *testing.T) {
	s := New(nil)
	a := s.NextContext()
	b := s.NextContext()
	if b <= a {
		t.Fatalf("contexts not increasing: %d then %d", a, b)
	}
}

func TestConcurrentSendDoesNotInterleaveFrames(t *testing.T) {
	client, server := net.Pipe()
	s := New(transport.New(client))
	defer s.Close()
	defer server.Close()

	const n = 20
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			done <- s.Send([]byte("0123456789"), time.Second)
		}()
	}

	read := make(chan struct{})
	go func() {
		defer close(read)
		for i := 0; i < n; i++ {
			header := make([]byte, FrameHeaderSize)
			if _, err := server.Read(header); err != nil {
				t.Error(err)
				return
			}
			length := DecodeFrameHeader(header)
			body := make([]byte, length)
			total := 0
			for total < len(body) {
				m, err := server.Read(body[total:])
				if err != nil {
					t.Error(err)
					return
				}
				total += m
			}
			if string(body) != "0123456789" {
				t.Errorf("interleaved/corrupted frame: %q", body)
			}
		}
	}()

	for i := 0; i < n; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
	<-read
}
