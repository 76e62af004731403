// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import "context"

// MessageTemplate is a protocol-specific request description that a
// [Protocol] binds against a [Token] to produce an outbound payload. It is
// a marker interface: each [Protocol] implementation knows how to
// interpret the concrete templates it accepts (e.g. [EPPRequestKind] for
// EPP, nil for WebWHOIS, which always issues a fixed GET).
type MessageTemplate any

// Protocol is an immutable value describing how to open a channel and how
// to run one message exchange over it, with the terminal response
// interpretation folded into RunStep. [NewEPPProtocol] composes its
// dial/observe/TLS pipeline once, at construction time, as a single
// [Func]; [NewWebWHOISProtocol] builds its dial/observe/cancel-watch/TLS
// stages on every NewChannel call, since a redirect can change the scheme.
type Protocol interface {
	// Name returns the protocol's name, used for logging and [Outcome].
	Name() string

	// PersistentConnection reports whether consecutive steps against this
	// protocol must share a single channel (true for EPP, false for
	// WebWHOIS).
	PersistentConnection() bool

	// NewChannel dials a fresh channel to the token's current host.
	NewChannel(ctx context.Context, token *Token) (Channel, error)

	// RunStep writes message over channel and waits for its resolution.
	//
	// kind is SUCCESS or one of the failure kinds from outcome.go. redirect
	// is true only for WebWHOIS responses that name a further hop: the
	// token's host/scheme have already been updated and the caller (see
	// [Step.Run]) should dial a new channel and retry the same message,
	// bounded by [Config.RedirectMaxChain].
	RunStep(ctx context.Context, channel Channel, token *Token, message MessageTemplate) (kind OutcomeKind, redirect bool, err error)
}
