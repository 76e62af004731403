// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import (
	"context"
	"log/slog"
	"time"
)

// ConnectionManager centralizes channel creation for a [Step]: it forwards
// to the protocol's own dial pipeline while emitting a
// span around the whole operation, the same way [ConnectFunc] and
// [TLSHandshakeFunc] bracket their own narrower spans.
//
// The connect timeout itself is not set here: the caller derives a bounded
// context from [Step.Duration] before calling Connect, consistent with
// [CancelWatchFunc] closing whatever partial connection resulted the
// instant that context is done.
type ConnectionManager struct {
	// ErrClassifier classifies dial/handshake errors into an [OutcomeKind].
	//
	// Set by [NewConnectionManager] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	Logger SLogger

	// RedirectMaxChain bounds WebWHOIS redirect following.
	//
	// Set by [NewConnectionManager] from [Config.RedirectMaxChain].
	RedirectMaxChain int

	// TimeNow is the function to get the current time.
	TimeNow func() time.Time
}

// NewConnectionManager returns a new [*ConnectionManager].
func NewConnectionManager(cfg *Config, logger SLogger) *ConnectionManager {
	return &ConnectionManager{
		ErrClassifier:    cfg.ErrClassifier,
		Logger:           logger,
		RedirectMaxChain: cfg.RedirectMaxChain,
		TimeNow:          cfg.TimeNow,
	}
}

// Connect dials a fresh [Channel] for protocol against token's current host.
func (m *ConnectionManager) Connect(ctx context.Context, protocol Protocol, token *Token) (Channel, error) {
	t0 := m.TimeNow()
	deadline, _ := ctx.Deadline()
	m.Logger.Info(
		"connectionManagerConnectStart",
		slog.Time("deadline", deadline),
		slog.String("host", token.GetHost()),
		slog.String("protocol", protocol.Name()),
		slog.Time("t", t0),
	)

	channel, err := protocol.NewChannel(ctx, token)

	m.Logger.Info(
		"connectionManagerConnectDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("host", token.GetHost()),
		slog.String("protocol", protocol.Name()),
		slog.Time("t0", t0),
		slog.Time("t", m.TimeNow()),
	)
	return channel, err
}
