// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import (
	"context"
	"time"
)

// Step is an immutable description of one dialogue turn within a
// [Sequence]: which protocol drives it, which message template it sends,
// how long it is allowed to take, and which [ConnectionManager] resolves
// its channel.
type Step struct {
	// Name identifies this step within its sequence, reported on [Outcome].
	Name string

	// Protocol drives channel creation and message exchange for this step.
	Protocol Protocol

	// Message is bound against the token to produce the outbound payload.
	// Its concrete type is protocol-specific (see [EPPRequestKind]); nil
	// for WebWHOIS, which always issues the same GET.
	Message MessageTemplate

	// Duration bounds connect+write+read for this step.
	Duration time.Duration

	// Manager resolves channels for this step.
	Manager *ConnectionManager
}

// Run resolves a channel, exchanges one message over it, follows
// redirects up to [Config.RedirectMaxChain], and closes or keeps the
// channel attached to token depending on the protocol's persistence and
// the outcome.
func (s *Step) Run(ctx context.Context, token *Token) Outcome {
	t0 := s.Manager.TimeNow()
	stepCtx, cancel := context.WithTimeout(ctx, s.Duration)
	defer cancel()

	redirects := 0
	for {
		channel, err := s.resolveChannel(stepCtx, token)
		if err != nil {
			return s.finish(classifyConnectErr(stepCtx, s.Manager.ErrClassifier, err), t0, err)
		}

		kind, redirect, err := s.Protocol.RunStep(stepCtx, channel, token, s.Message)

		if redirect {
			channel.Close()
			token.ClearChannel()
			redirects++
			if redirects > s.Manager.RedirectMaxChain {
				return s.finish(ResponseFailure, t0, nil)
			}
			continue
		}

		if kind == SUCCESS {
			if !s.Protocol.PersistentConnection() {
				channel.Close()
			}
		} else {
			channel.Close()
			if s.Protocol.PersistentConnection() {
				token.ClearChannel()
			}
		}
		return s.finish(kind, t0, err)
	}
}

// resolveChannel reuses the token's channel for a persistent protocol, or
// asks the [ConnectionManager] for a new one.
func (s *Step) resolveChannel(ctx context.Context, token *Token) (Channel, error) {
	if s.Protocol.PersistentConnection() {
		if channel := token.GetChannel(); channel != nil {
			return channel, nil
		}
		channel, err := s.Manager.Connect(ctx, s.Protocol, token)
		if err != nil {
			return nil, err
		}
		token.SetChannel(channel)
		return channel, nil
	}
	return s.Manager.Connect(ctx, s.Protocol, token)
}

func (s *Step) finish(kind OutcomeKind, t0 time.Time, err error) Outcome {
	return Outcome{
		Kind:     kind,
		Step:     s.Name,
		Protocol: s.Protocol.Name(),
		Elapsed:  s.Manager.TimeNow().Sub(t0),
		Err:      err,
	}
}
