package auth_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/pem"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/siodb/siodb-go/auth"
	"github.com/siodb/siodb-go/protocol"
	"github.com/siodb/siodb-go/wire"
)

func writeTestKey(t *testing.T) (string, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	der := x509.MarshalPKCS1PrivateKey(key)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}
	path := filepath.Join(t.TempDir(), "id_rsa")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, key
}

// serverSide plays the server half of the handshake over conn, verifying
// the signature against the public key and replying with authenticated.
func serverSide(t *testing.T, conn net.Conn, pub *rsa.PublicKey, challenge []byte, authenticated bool) {
	t.Helper()
	codec := wire.New(conn, conn)

	req := &protocol.BeginSessionRequest{}
	if err := codec.ReadFrame(5, req); err != nil {
		t.Errorf("server: read begin session request: %v", err)
		return
	}
	if err := codec.WriteFrame(6, &protocol.BeginSessionResponse{SessionStarted: true, Challenge: challenge}); err != nil {
		t.Errorf("server: write begin session response: %v", err)
		return
	}

	authReq := &protocol.ClientAuthenticationRequest{}
	if err := codec.ReadFrame(7, authReq); err != nil {
		t.Errorf("server: read client authentication request: %v", err)
		return
	}

	digest := sha512.Sum512(challenge)
	verifyErr := rsa.VerifyPKCS1v15(pub, crypto.SHA512, digest[:], authReq.Signature)
	ok := authenticated && verifyErr == nil

	if err := codec.WriteFrame(8, &protocol.ClientAuthenticationResponse{Authenticated: ok}); err != nil {
		t.Errorf("server: write client authentication response: %v", err)
	}
}

func TestHandshakeSuccess(t *testing.T) {
	t.Parallel()

	keyPath, key := writeTestKey(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	challenge := []byte("random-challenge-bytes")
	done := make(chan struct{})
	go func() {
		defer close(done)
		serverSide(t, server, &key.PublicKey, challenge, true)
	}()

	codec := wire.New(client, client)
	logger := log.New(io.Discard, "", 0)
	if err := auth.Handshake(codec, "root", keyPath, logger); err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	<-done
}

func TestHandshakeRejected(t *testing.T) {
	t.Parallel()

	keyPath, key := writeTestKey(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	challenge := []byte("another-challenge")
	done := make(chan struct{})
	go func() {
		defer close(done)
		serverSide(t, server, &key.PublicKey, challenge, false)
	}()

	codec := wire.New(client, client)
	logger := log.New(io.Discard, "", 0)
	err := auth.Handshake(codec, "root", keyPath, logger)
	<-done
	if err == nil {
		t.Fatal("expected authentication rejected error")
	}
}

func TestHandshakeSessionNotStarted(t *testing.T) {
	t.Parallel()

	keyPath, _ := writeTestKey(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		codec := wire.New(server, server)
		req := &protocol.BeginSessionRequest{}
		if err := codec.ReadFrame(5, req); err != nil {
			t.Errorf("server: read begin session request: %v", err)
			return
		}
		if err := codec.WriteFrame(6, &protocol.BeginSessionResponse{SessionStarted: false}); err != nil {
			t.Errorf("server: write begin session response: %v", err)
		}
	}()

	codec := wire.New(client, client)
	logger := log.New(io.Discard, "", 0)
	err := auth.Handshake(codec, "root", keyPath, logger)
	<-done
	if err == nil {
		t.Fatal("expected session not started error")
	}
}

func TestHandshakeMissingIdentityFile(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		codec := wire.New(server, server)
		req := &protocol.BeginSessionRequest{}
		if err := codec.ReadFrame(5, req); err != nil {
			t.Errorf("server: read begin session request: %v", err)
			return
		}
		if err := codec.WriteFrame(6, &protocol.BeginSessionResponse{SessionStarted: true, Challenge: []byte("x")}); err != nil {
			t.Errorf("server: write begin session response: %v", err)
		}
	}()

	codec := wire.New(client, client)
	logger := log.New(io.Discard, "", 0)
	err := auth.Handshake(codec, "root", filepath.Join(t.TempDir(), "missing"), logger)
	<-done
	if err == nil {
		t.Fatal("expected error for missing identity file")
	}
}
