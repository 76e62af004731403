// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import "io"

// Channel is the minimum a [Token] needs from a connection: something that
// can be closed when a step fails or a sequence tears down.
type Channel = io.Closer

// Token is the per-attempt mutable context threaded through a [Sequence]'s
// steps. It carries the current channel (if any), the
// target host and scheme WebWHOIS redirects may update, a generated domain
// label, and a client-transaction-id seed for EPP correlation.
//
// A transient [Token] is refreshed in place at the start of every sequence
// iteration (new identity, host/scheme reset to the sequence's baseline) and
// never carries a channel; a persistent [Token] is created once and its channel field
// survives across iterations until a terminal failure tears it down.
type Token struct {
	// persistent marks this token as surviving across sequence iterations.
	persistent bool

	// channel is the live connection owned by this token (persistent mode
	// only). Transient steps manage their own channel lifetime instead.
	channel Channel

	// host is the current target host. WebWHOIS redirect handling mutates
	// this in place.
	host string

	// scheme is "http" or "https"; only meaningful for WebWHOIS tokens.
	scheme string

	// domain is the generated domain label for EPP identity-producing
	// attempts, set by NewAttemptIdentity.
	domain string

	// clientID is the seed used to derive this attempt's clTRID values.
	clientID string

	domainGen DomainGenerator
}

// NewTransientToken returns a [*Token] for a protocol where every attempt
// opens and closes its own connection(s) (e.g. WebWHOIS).
func NewTransientToken(host string, domainGen DomainGenerator) *Token {
	return &Token{
		persistent: false,
		host:       host,
		domainGen:  domainGen,
	}
}

// NewPersistentToken returns a [*Token] for a protocol where consecutive
// steps share a single connection across sequence iterations (e.g. EPP).
func NewPersistentToken(host string, domainGen DomainGenerator) *Token {
	return &Token{
		persistent: true,
		host:       host,
		domainGen:  domainGen,
	}
}

// IsPersistent reports whether this token survives across iterations.
func (t *Token) IsPersistent() bool {
	return t.persistent
}

// NewAttemptIdentity generates a new domain label and client-transaction-id
// seed for this attempt. Regenerating is meaningful only for transient
// tokens; for persistent tokens it is called once, on the sequence's first
// iteration, and never again, since
// EPP identity must remain stable across LOGIN/CREATE/CHECK/DELETE/LOGOUT
// within the same sequence run.
func (t *Token) NewAttemptIdentity() {
	t.domain = t.domainGen.Next()
	t.clientID = NewSpanID()
}

// Domain returns the generated domain label for this attempt.
func (t *Token) Domain() string {
	return t.domain
}

// ClientID returns this attempt's client-transaction-id seed.
func (t *Token) ClientID() string {
	return t.clientID
}

// GetChannel returns the token's live channel, or nil if it has none.
func (t *Token) GetChannel() Channel {
	return t.channel
}

// SetChannel attaches a channel to the token.
func (t *Token) SetChannel(ch Channel) {
	t.channel = ch
}

// ClearChannel detaches the token's channel without closing it. Callers
// that need to close the channel should do so before calling this.
func (t *Token) ClearChannel() {
	t.channel = nil
}

// CloseChannel closes and detaches the token's channel, if any.
func (t *Token) CloseChannel() error {
	if t.channel == nil {
		return nil
	}
	err := t.channel.Close()
	t.channel = nil
	return err
}

// GetHost returns the token's current target host.
func (t *Token) GetHost() string {
	return t.host
}

// SetHost updates the token's target host (used by WebWHOIS redirect
// following).
func (t *Token) SetHost(host string) {
	t.host = host
}

// GetScheme returns the token's current scheme ("http" or "https").
func (t *Token) GetScheme() string {
	return t.scheme
}

// SetScheme updates the token's current scheme.
func (t *Token) SetScheme(scheme string) {
	t.scheme = scheme
}
