// Package auth implements the two-round Siodb authentication handshake:
// begin-session, then challenge/response signed with the client's RSA
// private key over SHA-512.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log"
	"os"

	"github.com/siodb/siodb-go/protocol"
	"github.com/siodb/siodb-go/wire"
)

const (
	frameBeginSessionRequest          = 5
	frameBeginSessionResponse         = 6
	frameClientAuthenticationRequest  = 7
	frameClientAuthenticationResponse = 8
)

// Error wraps a handshake failure so callers can tell it apart from
// transport or protocol errors; siodb.Conn maps this to KindAuth.
type Error struct {
	msg string
	err error
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.err }

func authErrorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

func wrapAuthError(context string, err error) *Error {
	return &Error{msg: fmt.Sprintf("%s: %s", context, err), err: err}
}

// Handshake runs the full begin-session / sign-challenge / authenticate
// sequence over codec, using identityFile (a PEM RSA private key) to sign
// the server's challenge. It returns a non-nil *Error on any failure,
// matching the "auth" error kind of §7.
func Handshake(codec *wire.Codec, user, identityFile string, logger *log.Logger) error {
	logger.Printf("auth: begin session as %q", user)

	req := &protocol.BeginSessionRequest{UserName: user}
	if err := codec.WriteFrame(frameBeginSessionRequest, req); err != nil {
		return wrapAuthError("auth: send begin session request", err)
	}

	resp := &protocol.BeginSessionResponse{}
	if err := codec.ReadFrame(frameBeginSessionResponse, resp); err != nil {
		return wrapAuthError("auth: read begin session response", err)
	}
	if !resp.SessionStarted {
		return authErrorf("auth: siodb session not started")
	}
	logger.Printf("auth: session started, challenge is %d bytes", len(resp.Challenge))

	signature, err := signChallenge(identityFile, resp.Challenge)
	if err != nil {
		return wrapAuthError("auth: sign challenge", err)
	}

	authReq := &protocol.ClientAuthenticationRequest{Signature: signature}
	if err := codec.WriteFrame(frameClientAuthenticationRequest, authReq); err != nil {
		return wrapAuthError("auth: send authentication request", err)
	}

	authResp := &protocol.ClientAuthenticationResponse{}
	if err := codec.ReadFrame(frameClientAuthenticationResponse, authResp); err != nil {
		return wrapAuthError("auth: read authentication response", err)
	}
	if !authResp.Authenticated {
		return authErrorf("auth: siodb authentication rejected")
	}

	logger.Printf("auth: authenticated")
	return nil
}

// signChallenge loads an unencrypted PEM-encoded RSA private key from path
// and signs challenge with RSA-SHA512 in a single shot (PKCS#1 v1.5,
// matching the reference driver's openssl Signer::sign_oneshot_to_vec with
// MessageDigest::sha512).
func signChallenge(path string, challenge []byte) ([]byte, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity file %q: %w", path, err)
	}

	block, _ := pem.Decode(contents)
	if block == nil {
		return nil, fmt.Errorf("identity file %q contains no PEM block", path)
	}

	key, err := parseRSAPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse RSA private key from %q: %w", path, err)
	}

	digest := sha512.Sum512(challenge)
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA512, digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign challenge: %w", err)
	}
	return signature, nil
}

// parseRSAPrivateKey accepts both PKCS#1 ("BEGIN RSA PRIVATE KEY") and
// PKCS#8 ("BEGIN PRIVATE KEY") encodings, since OpenSSL (the reference
// driver's key loader) emits the former by default but many modern
// toolchains emit the latter.
func parseRSAPrivateKey(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("PEM block does not contain an RSA private key")
	}
	return rsaKey, nil
}
