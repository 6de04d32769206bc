// Package listener implements gn's serve side: it binds a TCP or UDP
// endpoint and surfaces every received payload as one line of text on an
// output sink.
package listener

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/jdockerty/gn/internal/protocol"
)

// maxDatagram comfortably holds the largest possible UDP payload.
const maxDatagram = 64 << 10

// Server accepts connections or datagrams and writes each received payload,
// plus a trailing newline, to the sink. It shares no state with the write
// engine.
type Server struct {
	addr  string
	proto protocol.Protocol
	sink  io.Writer
	errw  io.Writer
	ready chan net.Addr
}

// New creates a Server bound to addr once Serve is called. Received
// payloads go to sink; log lines go to stderr.
func New(addr string, proto protocol.Protocol, sink io.Writer) *Server {
	return &Server{
		addr:  addr,
		proto: proto,
		sink:  sink,
		errw:  os.Stderr,
		ready: make(chan net.Addr, 1),
	}
}

// Ready yields the bound local address once Serve has bound its socket.
// Useful when binding to port 0.
func (s *Server) Ready() <-chan net.Addr { return s.ready }

// Serve binds the endpoint and loops forever, handling one connection or
// datagram at a time. Bind failures are fatal; read failures on an
// individual connection are logged and the loop continues. Cancelling ctx
// closes the socket and returns the context error.
func (s *Server) Serve(ctx context.Context) error {
	switch s.proto {
	case protocol.TCP:
		return s.serveTCP(ctx)
	case protocol.UDP:
		return s.serveUDP(ctx)
	default:
		return fmt.Errorf("unsupported protocol %q", s.proto)
	}
}

func (s *Server) serveTCP(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bind tcp://%s: %w", s.addr, err)
	}
	defer ln.Close()
	fmt.Fprintf(s.errw, "Listening on tcp://%s\n", ln.Addr())
	s.ready <- ln.Addr()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accept: %w", err)
		}
		data, err := io.ReadAll(conn)
		conn.Close()
		if err != nil {
			fmt.Fprintf(s.errw, "Unable to read stream: %v\n", err)
			continue
		}
		fmt.Fprintln(s.sink, string(data))
	}
}

func (s *Server) serveUDP(ctx context.Context) error {
	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, "udp", s.addr)
	if err != nil {
		return fmt.Errorf("bind udp://%s: %w", s.addr, err)
	}
	defer pc.Close()
	fmt.Fprintf(s.errw, "Listening on udp://%s\n", pc.LocalAddr())
	s.ready <- pc.LocalAddr()

	go func() {
		<-ctx.Done()
		pc.Close()
	}()

	buf := make([]byte, maxDatagram)
	for {
		n, _, err := pc.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read datagram: %w", err)
		}
		fmt.Fprintln(s.sink, string(buf[:n]))
	}
}
