// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"time"

	"github.com/bassosimone/errclass"
)

// OutcomeKind is the tagged result of one [Step].
type OutcomeKind string

const (
	// SUCCESS indicates the step's expected response was observed.
	SUCCESS OutcomeKind = "SUCCESS"

	// ConnectionFailure indicates a DNS/TCP/TLS-connect-level error.
	ConnectionFailure OutcomeKind = "CONNECTION_FAILURE"

	// CertificateFailure indicates the peer certificate failed x509
	// verification during the TLS handshake (untrusted peer, hostname
	// mismatch, expired or otherwise invalid certificate). Other handshake
	// errors are not reported here: they classify as CONNECTION_FAILURE or
	// TIMEOUT (see [classifyConnectErr]).
	CertificateFailure OutcomeKind = "CERTIFICATE_FAILURE"

	// ProtocolFailure indicates a frame decode error, a clTRID mismatch, or
	// greeting-ordering violation: the dialogue itself misbehaved.
	ProtocolFailure OutcomeKind = "PROTOCOL_FAILURE"

	// ResponseFailure indicates the wire exchange completed but the
	// response did not match what the step expected.
	ResponseFailure OutcomeKind = "RESPONSE_FAILURE"

	// Timeout indicates the step's clock fired before completion.
	Timeout OutcomeKind = "TIMEOUT"
)

// Outcome is the result of running one [Step], reported to a [MetricSink].
type Outcome struct {
	// Kind is the tagged result.
	Kind OutcomeKind

	// Step is the step's name within its sequence.
	Step string

	// Protocol is the protocol name the step ran against.
	Protocol string

	// Elapsed is the time the step took from dispatch to resolution.
	Elapsed time.Duration

	// Err is the underlying error, if any. Nil on SUCCESS.
	Err error
}

// classifyConnectErr maps a connection-establishment error (dial or TLS
// handshake) onto an [OutcomeKind].
//
// TLS certificate errors take priority over the generic error classifier:
// an expired or untrusted peer certificate is always CERTIFICATE_FAILURE
// regardless of what [ErrClassifier] would otherwise label it.
func classifyConnectErr(ctx context.Context, classifier ErrClassifier, err error) OutcomeKind {
	if err == nil {
		return SUCCESS
	}
	if isCertificateErr(err) {
		return CertificateFailure
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return Timeout
	}
	switch classifier.Classify(err) {
	case errclass.ETIMEDOUT:
		return Timeout
	default:
		return ConnectionFailure
	}
}

// isCertificateErr reports whether err is one of the x509 verification
// errors surfaced by a failed TLS handshake (untrusted peer, hostname
// mismatch, expired certificate).
func isCertificateErr(err error) bool {
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	var unknownAuthorityErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthorityErr) {
		return true
	}
	var certInvalidErr x509.CertificateInvalidError
	if errors.As(err, &certInvalidErr) {
		return true
	}
	return false
}

// classifyStepErr maps a post-connect step-level error (frame I/O, context
// expiry) onto an [OutcomeKind]. Protocol and response failures are
// produced directly by the protocol handler and are never passed here.
//
// A step-level timeout may surface either as the step's own context
// expiring (CancelWatchFunc's domain: one-shot WebWHOIS fetches) or as a
// net.Conn deadline expiring (EPPConn's domain: deadlines are derived from
// the same context but enforced by the connection itself, since the
// channel outlives any single step's context). Both are recognized here.
func classifyStepErr(ctx context.Context, err error) OutcomeKind {
	if err == nil {
		return SUCCESS
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return Timeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	return ProtocolFailure
}
