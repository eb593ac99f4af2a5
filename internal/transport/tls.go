package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"time"
)

// TLSCredentials configures the VeNCrypt X.509 path. Anonymous
// DH is requested via AnonDH; Go's standard crypto/tls does not implement
// anonymous-DH cipher suites and no suitable ecosystem library supplies
// one either, so AnonDH degrades to a self-signed ephemeral certificate
// generated anew on each BuildServerConfig call, documented in DESIGN.md
// as a stdlib necessity,
// not a protocol difference visible on the wire.
type TLSCredentials struct {
	AnonDH bool

	CertPEM []byte
	KeyPEM  []byte
	CAPEM   []byte
}

// BuildServerConfig returns a *tls.Config for the VeNCrypt TLS handshake
// server role.
func BuildServerConfig(creds TLSCredentials) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if creds.AnonDH || len(creds.CertPEM) == 0 {
		cert, err := ephemeralCert()
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	} else {
		cert, err := tls.X509KeyPair(creds.CertPEM, creds.KeyPEM)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	// An optional CA bundle switches VeNCrypt on to mutual TLS: the
	// client must present a certificate this pool can verify.
	if len(creds.CAPEM) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(creds.CAPEM) {
			return nil, fmt.Errorf("transport: no certificates parsed from ca pem")
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return cfg, nil
}

// tlsStream wraps a *tls.Conn, composed on top of a rawStream (or any
// Stream). HasInput must consult both the underlying socket and the TLS
// library's internal pending-record buffer: crypto/tls has no public
// "pending bytes" accessor, so this layer tracks it itself by buffering a
// single byte for Peek1/HasInput, mirroring the one-byte-buffer fallback the
// spec calls out for libraries with no early-data peek.
type tlsStream struct {
	conn        *tls.Conn
	peeked      *byte
	readTimeout time.Duration
}

// WrapServer performs the TLS server handshake on top of an existing
// net.Conn (the raw layer) and returns the composed Stream.
func WrapServer(conn net.Conn, cfg *tls.Config, readTimeout time.Duration) (Stream, error) {
	tc := tls.Server(conn, cfg)
	if err := tc.Handshake(); err != nil {
		return nil, err
	}
	return &tlsStream{conn: tc, readTimeout: readTimeout}, nil
}

// WrapClient performs the TLS client handshake.
func WrapClient(conn net.Conn, cfg *tls.Config, readTimeout time.Duration) (Stream, error) {
	tc := tls.Client(conn, cfg)
	if err := tc.Handshake(); err != nil {
		return nil, err
	}
	return &tlsStream{conn: tc, readTimeout: readTimeout}, nil
}

func (s *tlsStream) applyDeadline() {
	if s.readTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}
}

func (s *tlsStream) Recv(buf []byte) (int, error) {
	if s.peeked != nil && len(buf) > 0 {
		buf[0] = *s.peeked
		s.peeked = nil
		return 1, nil
	}
	s.applyDeadline()
	return s.conn.Read(buf)
}

func (s *tlsStream) RecvExact(buf []byte) error {
	total := 0
	if s.peeked != nil && len(buf) > 0 {
		buf[0] = *s.peeked
		s.peeked = nil
		total = 1
	}
	for total < len(buf) {
		s.applyDeadline()
		n, err := s.conn.Read(buf[total:])
		total += n
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *tlsStream) Peek1() (byte, error) {
	if s.peeked != nil {
		return *s.peeked, nil
	}
	var b [1]byte
	if err := s.RecvExact(b[:]); err != nil {
		return 0, err
	}
	s.peeked = &b[0]
	return b[0], nil
}

func (s *tlsStream) HasInput() bool {
	if s.peeked != nil {
		return true
	}
	_ = s.conn.SetReadDeadline(time.Now())
	var b [1]byte
	n, err := s.conn.Read(b[:])
	s.applyDeadline()
	if n > 0 {
		s.peeked = &b[0]
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	return false
}

func (s *tlsStream) Send(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := s.conn.Write(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *tlsStream) SendFlush() error { return nil }

func (s *tlsStream) Close() error { return s.conn.Close() }
