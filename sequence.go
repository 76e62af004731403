// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import (
	"context"
	"time"
)

// Sequence is an ordered list of [Step] instances sharing one [Token]. A
// transient sequence (e.g. WebWHOIS) refreshes its token's identity and
// host/scheme at the start of every iteration; a
// persistent sequence (e.g. EPP) keeps the same token, and the channel it
// may be carrying, across iterations until a terminal failure tears it
// down.
type Sequence struct {
	// Name identifies this sequence, reported on every [Outcome].
	Name string

	// Steps run in order; the sequence stops at the first non-SUCCESS
	// outcome and restarts from the beginning on the next iteration.
	Steps []*Step

	// Interval is the delay between iterations.
	Interval time.Duration

	// Token is the shared per-sequence state threaded through Steps.
	Token *Token

	// BaselineHost/BaselineScheme are restored onto a transient token at
	// the start of every iteration, undoing whatever a prior iteration's
	// redirect chain left it pointing at (persistent tokens never change
	// host, so these are unused for EPP sequences).
	BaselineHost   string
	BaselineScheme string
}

// run loops: run every step in order until one fails, record each step's
// outcome, close the token's channel if the iteration failed, then sleep
// for Interval before the next iteration. It returns
// only when ctx is done, at which point any persistent channel the token
// is holding is closed.
func (s *Sequence) run(ctx context.Context, metrics MetricSink) {
	defer s.Token.CloseChannel()

	for {
		if !s.Token.IsPersistent() {
			if s.BaselineHost != "" {
				s.Token.SetHost(s.BaselineHost)
			}
			if s.BaselineScheme != "" {
				s.Token.SetScheme(s.BaselineScheme)
			}
			s.Token.NewAttemptIdentity()
		} else if s.Token.ClientID() == "" {
			// First iteration of a persistent sequence: the identity must be
			// generated once and then held stable across LOGIN/CREATE/CHECK/
			// DELETE/LOGOUT.
			s.Token.NewAttemptIdentity()
		}

		failed := false
		for _, step := range s.Steps {
			select {
			case <-ctx.Done():
				return
			default:
			}
			outcome := step.Run(ctx, s.Token)
			metrics.Record(s.Name, outcome)
			if outcome.Kind != SUCCESS {
				failed = true
				break
			}
		}
		if failed {
			s.Token.CloseChannel()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.Interval):
		}
	}
}
