// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"time"
)

// Config holds common configuration for prober operations.
//
// Pass this to constructor functions to pre-wire dependencies. All fields
// have sensible defaults set by [NewConfig] except the EPP and WebWHOIS
// host, credential, TLD and path fields, which have no defaults because they
// name an operator's target deployment and must be set explicitly before the
// corresponding sequence is started (the EPP and WebWHOIS ports do default).
type Config struct {
	// Dialer is used by [*ConnectFunc].
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging and for
	// mapping failures onto an [OutcomeKind] (see outcome.go).
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// DomainGenerator produces the domain label EPP sequences query, check,
	// create, and delete. Generation itself is an external collaborator;
	// the core only depends on this interface.
	//
	// Set by [NewConfig] to [NewSpanDomainGenerator].
	DomainGenerator DomainGenerator

	// EPPUserID is the EPP login username. Required to run EPP sequences.
	EPPUserID string

	// EPPPassword is the EPP login password. Required to run EPP sequences.
	EPPPassword string

	// EPPHost is the EPP server hostname. Required to run EPP sequences.
	EPPHost string

	// EPPPort is the EPP server port. Defaults to 700.
	EPPPort int

	// EPPTLD is the top-level domain used to build probe domain names
	// (e.g. the generated label is queried/created as "<label>.<EPPTLD>").
	EPPTLD string

	// WebWHOISHTTPHost is the plain-HTTP WebWHOIS hostname.
	WebWHOISHTTPHost string

	// WebWHOISHTTPSHost is the HTTPS WebWHOIS hostname. The sequences built
	// by this package do not read it: when a redirect switches scheme, the
	// next host is taken from the redirect's Location header.
	WebWHOISHTTPSHost string

	// WebWHOISHTTPPort is the plain-HTTP WebWHOIS port. Defaults to 80.
	WebWHOISHTTPPort int

	// WebWHOISHTTPSPort is the HTTPS WebWHOIS port. Defaults to 443.
	WebWHOISHTTPSPort int

	// WebWHOISPath is the request path probed on the WebWHOIS endpoint.
	WebWHOISPath string

	// SequenceInterval is the delay between successive iterations of a
	// sequence once it completes (successfully or not). Defaults to 60s.
	SequenceInterval time.Duration

	// StepDuration is the default per-step timeout, covering connect,
	// write, and read for that step. Individual steps may override it.
	// Defaults to 10s.
	StepDuration time.Duration

	// RedirectMaxChain bounds the number of WebWHOIS redirects a single
	// step attempt will follow before failing with RESPONSE_FAILURE.
	// Defaults to 3.
	RedirectMaxChain int

	// TLSRootCAs is the trust store used to validate EPP and WebWHOIS-HTTPS
	// server certificates. A nil pool falls back to the system roots.
	TLSRootCAs *x509.CertPool

	// TLSClientCert is the optional client certificate presented during
	// the EPP and WebWHOIS-HTTPS TLS handshakes. Loading key material from disk is an external
	// concern; core only consumes the parsed certificate.
	TLSClientCert *tls.Certificate
}

// NewConfig creates a [*Config] with sensible defaults.
//
// EPP and WebWHOIS target fields are left zero-valued: callers must set
// them before constructing sequences via [NewEPPSequence] or
// [NewWebWHOISSequence].
func NewConfig() *Config {
	return &Config{
		Dialer:            &net.Dialer{},
		ErrClassifier:     DefaultErrClassifier,
		TimeNow:           time.Now,
		DomainGenerator:   NewSpanDomainGenerator(),
		EPPPort:           700,
		WebWHOISHTTPPort:  80,
		WebWHOISHTTPSPort: 443,
		SequenceInterval:  60 * time.Second,
		StepDuration:      10 * time.Second,
		RedirectMaxChain:  3,
	}
}
