//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package prober

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bassosimone/safeconn"
)

// eppGreetingState tracks whether an [*EPPConn] is still waiting for the
// server's initial greeting or is free to exchange commands (RFC 5730: a
// server must send a greeting before the client sends anything but a
// hello). A session starts in awaitingGreeting and returns to it whenever a
// hello is written (see [EPPConn.WriteFrame]).
type eppGreetingState int

const (
	awaitingGreeting eppGreetingState = iota
	awaitingResponse
)

// errEPPProtocol wraps a greeting-ordering or correlation violation so
// [classifyStepErr]'s callers can recognize it as PROTOCOL_FAILURE rather
// than a plain I/O error.
type errEPPProtocol struct {
	msg string
}

func (e *errEPPProtocol) Error() string { return e.msg }

// ErrEPPOutOfOrder means a non-hello request was sent, or a non-greeting
// document was received, while the session was still awaiting the greeting.
var ErrEPPOutOfOrder = &errEPPProtocol{msg: "epp: message out of order"}

// ErrEPPFrameTooLarge means a length prefix named a total frame length
// (header included) larger than [eppMaxFrameSize], almost certainly a
// desynchronized stream.
var ErrEPPFrameTooLarge = &errEPPProtocol{msg: "epp: frame too large"}

// eppMaxFrameSize bounds how large a single frame, length header included,
// may be, guarding
// against a malformed or malicious length prefix causing an unbounded
// allocation.
const eppMaxFrameSize = 16 << 20

// eppLengthPrefixSize is the width of EPP's frame length header: 4 bytes,
// big-endian, counting the header itself (RFC 5734 §4).
const eppLengthPrefixSize = 4

// EPPConn wraps a [TLSConn] for EPP-over-TLS exchanges.
//
// This type owns the underlying connection: the caller is responsible for
// calling Close() when done. It enforces the length-prefixed frame codec
// and the greeting-first ordering invariant; it does not otherwise
// interpret the EPP object model beyond what [eppResponseDoc] captures.
//
// Construct via [NewEPPConnFunc]. Not safe for concurrent use: a [Step]
// drives one exchange against one [*EPPConn] at a time.
type EPPConn struct {
	conn    TLSConn
	state   eppGreetingState
	errClass ErrClassifier
	logger  SLogger
	timeNow func() time.Time
}

// Close closes the underlying connection.
func (c *EPPConn) Close() error {
	return c.conn.Close()
}

// Conn returns the underlying [TLSConn] for logging purposes.
func (c *EPPConn) Conn() TLSConn {
	return c.conn
}

// WriteFrame writes payload as one length-prefixed EPP frame. Writing
// anything other than a hello (kind != EPPHello) while the session is
// still awaitingGreeting is a programmer error caught by [ErrEPPOutOfOrder]
// rather than by a panic, since the offending step is the caller's to
// classify and report, not core's to crash on.
//
// A hello always solicits a fresh greeting in response, even over a
// connection that already completed one login/logout round: sending one
// resets the session back to awaitingGreeting so a reused, persistent
// channel can restart its dialogue without being redialed.
func (c *EPPConn) WriteFrame(ctx context.Context, kind EPPRequestKind, payload []byte) error {
	if c.state == awaitingGreeting && kind != EPPHello {
		return ErrEPPOutOfOrder
	}
	if kind == EPPHello {
		c.state = awaitingGreeting
	}

	t0 := c.timeNow()
	deadline, _ := ctx.Deadline()
	c.logFrameWriteStart(t0, deadline, len(payload))
	c.conn.SetWriteDeadline(deadline)

	frame := make([]byte, eppLengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(eppLengthPrefixSize+len(payload)))
	copy(frame[eppLengthPrefixSize:], payload)
	_, err := c.conn.Write(frame)

	c.logFrameWriteDone(t0, deadline, err)
	if err != nil {
		return err
	}
	return nil
}

// ReadFrame reads one length-prefixed EPP frame and parses it.
//
// While the session is awaitingGreeting, a parsed document that is not a
// greeting is rejected with [ErrEPPOutOfOrder]; a valid greeting transitions
// the session to awaitingResponse, after which [EPPConn.WriteFrame] accepts
// any request kind and a second greeting is itself out of order.
func (c *EPPConn) ReadFrame(ctx context.Context) (*eppResponseDoc, error) {
	t0 := c.timeNow()
	deadline, _ := ctx.Deadline()
	c.logFrameReadStart(t0, deadline)
	c.conn.SetReadDeadline(deadline)

	header := make([]byte, eppLengthPrefixSize)
	if _, err := io.ReadFull(c.conn, header); err != nil {
		c.logFrameReadDone(t0, deadline, 0, err)
		return nil, err
	}
	total := binary.BigEndian.Uint32(header)
	if total < eppLengthPrefixSize {
		err := fmt.Errorf("epp: invalid frame length %d", total)
		c.logFrameReadDone(t0, deadline, 0, err)
		return nil, err
	}
	if total > eppMaxFrameSize {
		c.logFrameReadDone(t0, deadline, 0, ErrEPPFrameTooLarge)
		return nil, ErrEPPFrameTooLarge
	}

	payload := make([]byte, total-eppLengthPrefixSize)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		c.logFrameReadDone(t0, deadline, len(payload), err)
		return nil, err
	}
	c.logFrameReadDone(t0, deadline, len(payload), nil)

	doc, err := parseEPPResponse(payload)
	if err != nil {
		return nil, err
	}
	if c.state == awaitingGreeting {
		if doc.Greeting == nil {
			return nil, ErrEPPOutOfOrder
		}
		c.state = awaitingResponse
		return doc, nil
	}
	if doc.Greeting != nil {
		return nil, ErrEPPOutOfOrder
	}
	return doc, nil
}

func (c *EPPConn) logFrameWriteStart(t0 time.Time, deadline time.Time, size int) {
	c.logger.Debug(
		"eppFrameWriteStart",
		slog.Time("deadline", deadline),
		slog.Int("ioBufferSize", size),
		slog.String("localAddr", safeconn.LocalAddr(c.conn)),
		slog.String("remoteAddr", safeconn.RemoteAddr(c.conn)),
		slog.Time("t", t0),
	)
}

func (c *EPPConn) logFrameWriteDone(t0 time.Time, deadline time.Time, err error) {
	c.logger.Debug(
		"eppFrameWriteDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", c.errClass.Classify(err)),
		slog.String("localAddr", safeconn.LocalAddr(c.conn)),
		slog.String("remoteAddr", safeconn.RemoteAddr(c.conn)),
		slog.Time("t0", t0),
		slog.Time("t", c.timeNow()),
	)
}

func (c *EPPConn) logFrameReadStart(t0 time.Time, deadline time.Time) {
	c.logger.Debug(
		"eppFrameReadStart",
		slog.Time("deadline", deadline),
		slog.String("localAddr", safeconn.LocalAddr(c.conn)),
		slog.String("remoteAddr", safeconn.RemoteAddr(c.conn)),
		slog.Time("t", t0),
	)
}

func (c *EPPConn) logFrameReadDone(t0 time.Time, deadline time.Time, size int, err error) {
	c.logger.Debug(
		"eppFrameReadDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", c.errClass.Classify(err)),
		slog.Int("ioBytesCount", size),
		slog.String("localAddr", safeconn.LocalAddr(c.conn)),
		slog.String("remoteAddr", safeconn.RemoteAddr(c.conn)),
		slog.Time("t0", t0),
		slog.Time("t", c.timeNow()),
	)
}

// EPPConnFunc wraps a [TLSConn] into an [*EPPConn].
//
// This is a [Func] that can be composed into pipelines, mirroring the
// teacher's DNSOverTCPConnFunc/DNSOverTLSConnFunc shape.
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type EPPConnFunc struct {
	// ErrClassifier classifies errors for structured logging.
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	Logger SLogger

	// TimeNow is the function to get the current time.
	TimeNow func() time.Time
}

// NewEPPConnFunc returns a new [*EPPConnFunc].
func NewEPPConnFunc(cfg *Config, logger SLogger) *EPPConnFunc {
	return &EPPConnFunc{
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		TimeNow:       cfg.TimeNow,
	}
}

var _ Func[TLSConn, *EPPConn] = &EPPConnFunc{}

// Call wraps conn into an [*EPPConn], starting in the awaitingGreeting state.
func (op *EPPConnFunc) Call(ctx context.Context, conn TLSConn) (*EPPConn, error) {
	return &EPPConn{
		conn:     conn,
		state:    awaitingGreeting,
		errClass: op.ErrClassifier,
		logger:   op.Logger,
		timeNow:  op.TimeNow,
	}, nil
}

// isOutOfOrder reports whether err is (or wraps) an EPP ordering/framing
// protocol violation, used by eppprotocol.go to classify outcomes.
func isOutOfOrder(err error) bool {
	var protoErr *errEPPProtocol
	return errors.As(err, &protoErr)
}
