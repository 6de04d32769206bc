package listener_test

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jdockerty/gn/internal/listener"
	"github.com/jdockerty/gn/internal/protocol"
)

// syncBuffer guards a bytes.Buffer so the serve goroutine and test
// assertions do not race.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startServer(t *testing.T, proto protocol.Protocol, sink *syncBuffer) (net.Addr, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	srv := listener.New("127.0.0.1:0", proto, sink)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not shut down")
		}
	})

	select {
	case addr := <-srv.Ready():
		return addr, cancel
	case err := <-done:
		t.Fatalf("server exited before binding: %v", err)
		return nil, cancel
	}
}

func waitForOutput(t *testing.T, sink *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(sink.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("sink never received %q, got %q", want, sink.String())
}

func TestServeTCPWritesPayloadToSink(t *testing.T) {
	var sink syncBuffer
	addr, _ := startServer(t, protocol.TCP, &sink)

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if _, err := conn.Write([]byte("hello listener")); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.Close()

	waitForOutput(t, &sink, "hello listener\n")
}

func TestServeTCPContinuesAfterMultipleConnections(t *testing.T) {
	var sink syncBuffer
	addr, _ := startServer(t, protocol.TCP, &sink)

	for _, msg := range []string{"first", "second", "third"} {
		conn, err := net.Dial("tcp", addr.String())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		if _, err := conn.Write([]byte(msg)); err != nil {
			t.Fatalf("write: %v", err)
		}
		conn.Close()
		waitForOutput(t, &sink, msg+"\n")
	}
}

func TestServeUDPWritesPayloadToSink(t *testing.T) {
	var sink syncBuffer
	addr, _ := startServer(t, protocol.UDP, &sink)

	conn, err := net.Dial("udp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if _, err := conn.Write([]byte("datagram payload")); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.Close()

	waitForOutput(t, &sink, "datagram payload\n")
}

func TestServeStopsOnContextCancel(t *testing.T) {
	var sink syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	srv := listener.New("127.0.0.1:0", protocol.TCP, &sink)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	<-srv.Ready()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestServeUnsupportedProtocol(t *testing.T) {
	srv := listener.New("127.0.0.1:0", protocol.Protocol("sctp"), &syncBuffer{})
	if err := srv.Serve(context.Background()); err == nil {
		t.Fatal("expected unsupported protocol error")
	}
}
