// SPDX-License-Identifier: GPL-3.0-or-later

// Package prober provides the core engine of a network service prober:
// a long-running process that continuously exercises WebWHOIS (HTTP/HTTPS)
// and EPP-over-TLS endpoints to verify their correctness, recording a
// structured outcome for every attempt.
//
// # Core Abstractions
//
// The package is built around the same composable [Func] primitive used
// throughout its connection-handling layer:
//
//	type Func[A, B any] interface {
//		Call(ctx context.Context, input A) (B, error)
//	}
//
// Protocol pipelines (dial, observe, cancel-watch, TLS handshake, protocol
// wrap) are built from these stages: EPP composes its pipeline once, at
// [Protocol] construction time, with [Compose4]; WebWHOIS chains its stages
// on every new channel, because a redirect can switch it between plain HTTP
// and TLS. On top of this sits the probing model proper:
//
//   - [Token]: per-attempt mutable context (current channel, target host,
//     scheme, generated domain, client-transaction-id seed) threaded through
//     a sequence's steps. Transient tokens are refreshed in place every iteration;
//     persistent tokens carry a live channel across iterations.
//   - [Step]: one request/response turn. Resolves a channel (new or reused),
//     binds a message template against the token, writes it, and waits for
//     either a classified [Outcome] or the step's bounded context to expire.
//   - [Sequence]: an ordered, non-empty list of steps run in an endless
//     loop, advancing on success and restarting from the first step after
//     [Config.SequenceInterval] on any failure.
//   - [Prober]: owns a set of sequences and runs each on its own goroutine.
//
// # Protocols
//
// EPP ([NewEPPProtocol]) speaks a 4-byte length-prefixed XML dialogue over a
// persistent TLS connection: HELLO, LOGIN, CHECK, CREATE, DELETE, LOGOUT.
// WebWHOIS ([NewWebWHOISProtocol]) issues one-shot HTTP/HTTPS GET requests,
// following redirects up to [Config.RedirectMaxChain] and switching scheme
// when a redirect targets HTTPS.
//
// # Outcomes
//
// Every step resolves to exactly one [Outcome]: SUCCESS, CONNECTION_FAILURE,
// CERTIFICATE_FAILURE, PROTOCOL_FAILURE, RESPONSE_FAILURE, or TIMEOUT. No
// error crosses a sequence boundary — sequences self-heal by restarting from
// their first step. Outcomes are handed to a [MetricSink], an abstract
// surface this package only calls against; the metrics backend itself is an
// external collaborator.
//
// # Observability
//
// All primitives support structured logging via [SLogger] (compatible with
// [log/slog]). By default, logging is disabled; set a logger explicitly to
// enable it. Error classification is configurable via [ErrClassifier] and
// defaults to [DefaultErrClassifier], which also feeds the outcome taxonomy.
//
// Use [NewSpanID] to generate a unique, time-ordered identifier (UUIDv7) for
// each attempt, then attach it to the logger with [*slog.Logger.With].
//
// # Timeout and Context Philosophy
//
// Like its connection-handling layer, this package is context-transparent:
// it never modifies the context it receives. Each [Step] derives its own
// bounded context from [Step.Duration]. For one-shot channels (WebWHOIS),
// [CancelWatchFunc] binds that context's lifetime to the channel so
// in-flight I/O observes cancellation promptly. For persistent channels
// (EPP), binding a single step's context to the channel would close it the
// moment that step returns, so the channel outlives any one step's context
// instead: each frame read/write derives a plain [net.Conn] deadline from
// its call's context, and sequence-level teardown closes the channel
// explicitly when the [Prober]'s context is canceled.
//
// # Design Boundaries
//
// Out of scope: dependency-injection wiring and process bootstrap, the
// metrics backend implementation, logging infrastructure, credential
// loading from disk, the EPP domain-name generation algorithm, a server
// implementation, and cross-process/cross-machine orchestration. These are
// external collaborators; this package depends only on their interfaces.
package prober
