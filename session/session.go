// Package session implements the framer and reply dispatcher: it frames
// outbound messages with the fixed header, runs the single reader task that
// demultiplexes inbound frames by context id into a bounded, swept cache,
// and serves per-call awaiters with timeouts.
package session

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-lab/go/logx"

	"github.com/packetdp/vppclient/transport"
)

// backoffInitial and backoffMax bound the reader task's retry delay after a
// transport error. Exponential with a 3s ceiling: the steady state for a
// dead transport is one retry every 3s, while a single transient error
// costs only 100ms.
const (
	backoffInitial = 100 * time.Millisecond
	backoffMax     = 3 * time.Second
)

var readerErrLog = logx.NewLogEvery(nil, time.Second)

// Session owns one transport connection: one reader task reads inbound
// frames and demultiplexes them by context id; any number of callers may
// call Send/Recv/RecvSingle concurrently.
type Session struct {
	id string
	t  transport.Transport

	cache *replyCache

	ctxCounter uint64 // atomic

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
}

// New wraps t in a Session. Callers must call Run (typically in its own
// goroutine) before any Send/Recv call can make progress.
func New(t transport.Transport) *Session {
	return &Session{
		id:     newSessionID(),
		t:      t,
		cache:  newReplyCache(),
		closed: make(chan struct{}),
	}
}

// ID returns the session's process-unique log-correlation identifier.
func (s *Session) ID() string { return s.id }

// NextContext allocates the next monotonically increasing context id.
// Handshake context allocation (ctx=1 for the outbound sockclnt_create) is
// the client package's responsibility.
func (s *Session) NextContext() uint32 {
	return uint32(atomic.AddUint64(&s.ctxCounter, 1))
}

// Run is the single reader task: it owns the read half of the transport for
// the lifetime of the session. It returns when ctx is cancelled or Close is
// called; transport errors are retried with backoff and never cause it to
// silently drop a frame. A permanent failure spins with backoff forever,
// leaving pending calls to time out.
func (s *Session) Run(ctx context.Context) {
	backoff := backoffInitial
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		default:
		}

		if err := s.readOneFrame(); err != nil {
			ReaderErrorCount.Inc()
			readerErrLog.Printf("session %s: reader error: %v (retrying in %s)", s.id, err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			case <-s.closed:
				return
			}
			backoff *= 2
			if backoff > backoffMax {
				backoff = backoffMax
			}
			continue
		}
		backoff = backoffInitial

		if n := s.cache.size(); n > sweepThreshold {
			s.cache.sweep(time.Now())
			SweepCount.Inc()
		}
	}
}

func (s *Session) readOneFrame() error {
	header := make([]byte, FrameHeaderSize)
	if err := s.t.ReadFull(header, time.Time{}); err != nil {
		return err
	}
	payloadLen := DecodeFrameHeader(header)
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if err := s.t.ReadFull(payload, time.Time{}); err != nil {
			return err
		}
	}
	if len(payload) < PreambleSize {
		// Malformed frame from the dataplane's point of view; log and move
		// on rather than wedging the reader task.
		log.Printf("session %s: payload shorter than preamble (%d bytes)", s.id, len(payload))
		return nil
	}
	preamble := DecodePreamble(payload)
	n := s.cache.deposit(Entry{Preamble: preamble, Payload: payload, Enqueued: time.Now()})
	CacheSizeHistogram.Observe(float64(n))
	return nil
}

// Send frames payload with the 16-byte header and writes it to the
// transport, racing the write against timeout. Many callers may call Send
// concurrently; writeMu serializes the bytes on the wire so no frame is
// interleaved with another.
func (s *Session) Send(payload []byte, timeout time.Duration) error {
	start := time.Now()
	defer func() { SendLatencyHistogram.Observe(time.Since(start).Seconds()) }()

	frame := EncodeFrameHeader(uint32(len(payload)))
	frame = append(frame, payload...)

	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	done := make(chan error, 1)
	go func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		done <- s.t.WriteAll(frame, deadline)
	}()

	if timeout <= 0 {
		return <-done
	}
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return ErrTimeout
	}
}

// Recv waits up to timeout for at least one reply to have been deposited
// for ctx, then removes and returns the entire queue. Cancelling via
// parent.Done leaves any later-arriving reply in the cache for a future
// Recv or for sweep to reclaim.
func (s *Session) Recv(parent context.Context, ctx uint32, timeout time.Duration) ([]Entry, error) {
	deadline := time.Now().Add(timeout)
	for {
		wait := s.cache.bcast.wait()
		if q, ok := s.cache.take(ctx); ok {
			return q, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			RecvTimeoutCount.Inc()
			return nil, ErrTimeout
		}
		timer := time.NewTimer(remaining)
		select {
		case <-wait:
			timer.Stop()
		case <-timer.C:
			RecvTimeoutCount.Inc()
			return nil, ErrTimeout
		case <-parent.Done():
			timer.Stop()
			return nil, parent.Err()
		case <-s.closed:
			timer.Stop()
			return nil, ErrClosed
		}
	}
}

// RecvSingle waits for exactly one reply on ctx and checks its message id
// against expectedMsgID, the shape every non-streaming service call needs.
func (s *Session) RecvSingle(parent context.Context, ctx uint32, expectedMsgID uint16, timeout time.Duration) (Entry, error) {
	entries, err := s.Recv(parent, ctx, timeout)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) != 1 {
		return Entry{}, &WrongEntryCountError{Context: ctx, Count: len(entries)}
	}
	e := entries[0]
	if e.Preamble.MsgID != expectedMsgID {
		return Entry{}, &MsgIDMismatchError{Expected: expectedMsgID, Got: e.Preamble.MsgID}
	}
	return e, nil
}

// Close stops the reader task and unblocks every waiter with ErrClosed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	return s.t.Close()
}
