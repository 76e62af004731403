// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import "crypto/tls"

// NewTLSConfig builds a [*tls.Config] for an EPP or WebWHOIS-HTTPS
// handshake against serverName.
//
// Certificate validation is never disabled: a nil
// cfg.TLSRootCAs falls back to the system trust store via the standard
// library's default behavior rather than to InsecureSkipVerify. Credential
// loading from disk stays out of core; callers pass already-parsed PEM
// material via [Config.TLSRootCAs] and [Config.TLSClientCert].
func NewTLSConfig(cfg *Config, serverName string, nextProtos []string) *tls.Config {
	tlsConfig := &tls.Config{
		ServerName: serverName,
		RootCAs:    cfg.TLSRootCAs,
		NextProtos: nextProtos,
	}
	if cfg.TLSClientCert != nil {
		tlsConfig.Certificates = []tls.Certificate{*cfg.TLSClientCert}
	}
	return tlsConfig
}
