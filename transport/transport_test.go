package transport_test

import (
	"io"
	"net"
	"path/filepath"
	"testing"

	"github.com/siodb/siodb-go/transport"
)

func TestDialTCPRoundTrip(t *testing.T) {
	t.Parallel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		io.ReadFull(conn, buf)
		conn.Write(buf)
	}()

	addr := lis.Addr().(*net.TCPAddr)
	s, err := transport.DialTCP(addr.IP.String(), addr.Port)
	if err != nil {
		t.Fatalf("DialTCP: %v", err)
	}
	defer s.Close()

	if _, err := s.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, 5)
	if _, err := io.ReadFull(s, buf); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if string(buf) != "hello" {
		t.Fatalf("got %q", buf)
	}

	if err := transport.Shutdown(s); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestDialUnixRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sockPath := filepath.Join(dir, "siodb.sock")

	lis, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 3)
		io.ReadFull(conn, buf)
		conn.Write(buf)
	}()

	s, err := transport.DialUnix(sockPath)
	if err != nil {
		t.Fatalf("DialUnix: %v", err)
	}
	defer s.Close()

	if _, err := s.Write([]byte("hey")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, 3)
	if _, err := io.ReadFull(s, buf); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if string(buf) != "hey" {
		t.Fatalf("got %q", buf)
	}
}
