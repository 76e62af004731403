// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import (
	"context"
)

// eppProtocol implements [Protocol] for EPP-over-TLS. Its [NewChannel]
// builds a dial→observe→TLS pipeline, composed once at construction time
// via [Compose4].
//
// Unlike the teacher's one-shot DNS examples, this pipeline omits
// [CancelWatchFunc]: the channel it produces is persistent, reused across
// LOGIN/CREATE/CHECK/DELETE/LOGOUT, and must survive past the bounded
// context of the step that dialed it, so
// binding its lifetime to that step's context would close it the moment
// the step returns. Per-step timeout enforcement instead happens at the
// frame level, via deadlines derived from each call's context
// (see [EPPConn.ReadFrame]/[EPPConn.WriteFrame]); sequence-level teardown
// closes the channel explicitly (see sequence.go).
type eppProtocol struct {
	cfg      *Config
	logger   SLogger
	pipeline Func[Unit, TLSConn]
}

var _ Protocol = &eppProtocol{}

// NewEPPProtocol returns the [Protocol] driving EPP-over-TLS dialogues
// against cfg.EPPHost:cfg.EPPPort.
func NewEPPProtocol(cfg *Config, logger SLogger) Protocol {
	address := NewEndpointFunc(cfg.EPPHost, cfg.EPPPort)
	return &eppProtocol{
		cfg:    cfg,
		logger: logger,
		pipeline: Compose4(
			address,
			NewConnectFunc(cfg, "tcp", logger),
			NewObserveConnFunc(cfg, logger),
			NewTLSHandshakeFunc(cfg, NewTLSConfig(cfg, cfg.EPPHost, []string{"epp"}), logger),
		),
	}
}

// Name implements [Protocol].
func (p *eppProtocol) Name() string { return "epp" }

// PersistentConnection implements [Protocol]: EPP keeps one TLS session
// across LOGIN/CREATE/CHECK/DELETE/LOGOUT.
func (p *eppProtocol) PersistentConnection() bool { return true }

// NewChannel implements [Protocol].
//
// token.GetHost is not consulted here: unlike WebWHOIS, EPP has no
// redirect-driven retargeting, so the protocol always dials cfg.EPPHost.
func (p *eppProtocol) NewChannel(ctx context.Context, token *Token) (Channel, error) {
	tlsConn, err := p.pipeline.Call(ctx, Unit{})
	if err != nil {
		return nil, err
	}
	connFunc := NewEPPConnFunc(p.cfg, p.logger)
	conn, err := connFunc.Call(ctx, tlsConn)
	if err != nil {
		tlsConn.Close()
		return nil, err
	}
	return conn, nil
}

// RunStep implements [Protocol].
//
// message must be an [EPPRequestKind]; any other value is a programmer
// error. redirect is always false: EPP dialogues never retarget hosts.
func (p *eppProtocol) RunStep(ctx context.Context, channel Channel, token *Token, message MessageTemplate) (OutcomeKind, bool, error) {
	conn, ok := channel.(*EPPConn)
	if !ok {
		return ProtocolFailure, false, ErrEPPOutOfOrder
	}
	kind, ok := message.(EPPRequestKind)
	if !ok {
		return ProtocolFailure, false, ErrEPPOutOfOrder
	}

	payload, clTRID, expect := p.build(kind, token)
	// A freshly dialed channel still holds the server's connect-time
	// greeting, which answers HELLO by itself: sending a hello there would
	// solicit a second greeting that the next step would read as out of
	// order. On a reused channel, HELLO sends a hello to get a fresh one.
	if kind != EPPHello || conn.state != awaitingGreeting {
		if err := conn.WriteFrame(ctx, kind, payload); err != nil {
			return p.classify(ctx, err), false, err
		}
	}
	doc, err := conn.ReadFrame(ctx)
	if err != nil {
		return p.classify(ctx, err), false, err
	}
	if expect.Matches(doc, clTRID) {
		return SUCCESS, false, nil
	}
	if clTRID != "" && !correlated(doc, clTRID) {
		return ProtocolFailure, false, ErrEPPOutOfOrder
	}
	return ResponseFailure, false, nil
}

// build binds kind against token/p.cfg, returning the request payload, the
// clTRID it carries (empty for hello), and the response it expects.
func (p *eppProtocol) build(kind EPPRequestKind, token *Token) (payload []byte, clTRID string, expect ExpectedResponse) {
	switch kind {
	case EPPHello:
		return buildHello(), "", ExpectGreeting
	case EPPLogin:
		payload, clTRID = buildLogin(p.cfg, token)
		return payload, clTRID, ExpectSimpleSuccess
	case EPPLogout:
		payload, clTRID = buildLogout(token)
		return payload, clTRID, ExpectSimpleSuccess
	case EPPCheckExists:
		payload, clTRID = buildCheck(p.cfg, token)
		return payload, clTRID, ExpectDomainExists
	case EPPCheckNotExists:
		payload, clTRID = buildCheck(p.cfg, token)
		return payload, clTRID, ExpectDomainNotExists
	case EPPCreate:
		payload, clTRID = buildCreate(p.cfg, token)
		return payload, clTRID, ExpectSimpleSuccess
	case EPPDelete:
		payload, clTRID = buildDelete(p.cfg, token)
		return payload, clTRID, ExpectSimpleSuccess
	default:
		return nil, "", ExpectFailure
	}
}

// classify maps a frame I/O or framing error onto an [OutcomeKind].
// Out-of-order/framing violations are always PROTOCOL_FAILURE; everything
// else falls back to the generic step-error classifier (timeout vs. a
// residual connection error surfacing at read/write time).
func (p *eppProtocol) classify(ctx context.Context, err error) OutcomeKind {
	if isOutOfOrder(err) {
		return ProtocolFailure
	}
	return classifyStepErr(ctx, err)
}
