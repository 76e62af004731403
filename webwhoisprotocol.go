// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import "context"

// webwhoisProtocol implements [Protocol] for WebWHOIS HTTP/HTTPS probing.
// Unlike EPP, the dial target is not fixed at construction time: a
// redirect can retarget both host and scheme, so
// [NewChannel] reads the token's current host/scheme on every call and
// builds the matching plain-HTTP or TLS pipeline on demand.
type webwhoisProtocol struct {
	cfg    *Config
	logger SLogger
}

var _ Protocol = &webwhoisProtocol{}

// NewWebWHOISProtocol returns the [Protocol] driving one-shot WebWHOIS GET
// requests. Callers seed the starting host/scheme via [NewTransientToken]
// plus [Token.SetHost]/[Token.SetScheme] (normally cfg.WebWHOISHTTPHost,
// scheme "http": every probe starts on plain HTTP and only moves to TLS
// if a redirect says so).
func NewWebWHOISProtocol(cfg *Config, logger SLogger) Protocol {
	return &webwhoisProtocol{cfg: cfg, logger: logger}
}

// Name implements [Protocol].
func (p *webwhoisProtocol) Name() string { return "webwhois" }

// PersistentConnection implements [Protocol]: every WebWHOIS hop opens and
// closes its own connection, even within one redirect chain.
func (p *webwhoisProtocol) PersistentConnection() bool { return false }

// NewChannel implements [Protocol].
func (p *webwhoisProtocol) NewChannel(ctx context.Context, token *Token) (Channel, error) {
	address := webwhoisAddress(p.cfg, token)
	connectFunc := NewConnectFunc(p.cfg, "tcp", p.logger)
	conn, err := connectFunc.Call(ctx, address)
	if err != nil {
		return nil, err
	}
	observed, err := NewObserveConnFunc(p.cfg, p.logger).Call(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	watched, err := NewCancelWatchFunc().Call(ctx, observed)
	if err != nil {
		observed.Close()
		return nil, err
	}

	if token.GetScheme() == "https" {
		tlsConfig := NewTLSConfig(p.cfg, token.GetHost(), []string{"h2", "http/1.1"})
		tlsConn, err := NewTLSHandshakeFunc(p.cfg, tlsConfig, p.logger).Call(ctx, watched)
		if err != nil {
			return nil, err
		}
		return NewHTTPConnFuncTLS(p.cfg, p.logger).Call(ctx, tlsConn)
	}
	return NewHTTPConnFuncPlain(p.cfg, p.logger).Call(ctx, watched)
}

// RunStep implements [Protocol]. message is unused: WebWHOIS always issues
// the same GET built from the token's current host/scheme/path.
func (p *webwhoisProtocol) RunStep(ctx context.Context, channel Channel, token *Token, message MessageTemplate) (OutcomeKind, bool, error) {
	conn, ok := channel.(*HTTPConn)
	if !ok {
		return ResponseFailure, false, nil
	}
	req, err := webwhoisRequest(p.cfg, token)
	if err != nil {
		return ResponseFailure, false, err
	}
	resp, err := conn.RoundTrip(req.WithContext(ctx))
	if err != nil {
		return classifyStepErr(ctx, err), false, err
	}
	kind, redirect := webwhoisInterpret(resp, token)
	return kind, redirect, nil
}
