package transport

import (
	"net"
	"testing"
	"time"
)

func TestWriteAllReadFullRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	ta := New(a)
	tb := New(b)

	payload := []byte("hello, dataplane")
	done := make(chan error, 1)
	go func() {
		done <- ta.WriteAll(payload, time.Time{})
	}()

	got := make([]byte, len(payload))
	if err := tb.ReadFull(got, time.Time{}); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q want %q", got, payload)
	}
}

func TestReadFullShortReadIsError(t *testing.T) {
	a, b := net.Pipe()
	ta := New(a)
	tb := New(b)

	go func() {
		ta.WriteAll([]byte("ab"), time.Time{})
		a.Close()
	}()

	buf := make([]byte, 4)
	if err := tb.ReadFull(buf, time.Time{}); err == nil {
		t.Fatal("expected error on short read past close")
	}
}
