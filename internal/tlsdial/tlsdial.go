// Package tlsdial builds client-side tls.Config values, adapted from the
// teacher's https certificate manager (which supplied server-side SNI
// certificates) repurposed for the opposite direction: validating the
// server's certificate against a caller-supplied hostname.
package tlsdial

import (
	"crypto/tls"
	"net"

	"github.com/pkg/errors"
)

// Config builds the tls.Config used when a pool.Config.Domain is set,
// enabling TLS with SNI/hostname validation against domain.
func Config(domain string) *tls.Config {
	return &tls.Config{
		ServerName: domain,
		MinVersion: tls.VersionTLS12,
	}
}

// Dial opens a TCP connection to address and, if domain is non-empty,
// wraps it in a TLS client handshake validated against domain. An empty
// domain means the caller did not request TLS (§6 "domain ... enables
// TLS").
func Dial(address, domain string) (net.Conn, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, errors.Wrap(err, "tlsdial: dial")
	}
	if domain == "" {
		return conn, nil
	}

	tlsConn := tls.Client(conn, Config(domain))
	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "tlsdial: TLS handshake")
	}
	return tlsConn, nil
}
