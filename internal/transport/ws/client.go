// Package ws connects the bot process to the host over a websocket: HELLO/WELCOME
// handshake, then one CONTROLLER per controlled car for every TICK.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/bot"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

// Sink observes every processed tick after the controllers are queued. raw is the TICK
// payload as received.
type Sink interface {
	OnTick(raw []byte, msg *protocol.TickMsg, outs []bot.Output) error
}

type Options struct {
	URL string
	// Validator, when set, checks every TICK against its schema before it is used.
	Validator *protocol.Validator
	Sinks     []Sink
	Log       logrus.FieldLogger

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

type Client struct {
	mgr  *bot.Manager
	opts Options
	log  logrus.FieldLogger

	welcome protocol.WelcomeMsg
	ticks   uint64
}

func NewClient(mgr *bot.Manager, opts Options) *Client {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 5 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 60 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	l := opts.Log
	if l == nil {
		nl := logrus.New()
		nl.SetLevel(logrus.PanicLevel)
		l = nl
	}
	return &Client{mgr: mgr, opts: opts, log: l.WithField("component", "ws")}
}

// Welcome is the host's handshake answer; zero until Run has completed the handshake.
func (c *Client) Welcome() protocol.WelcomeMsg { return c.welcome }

// Ticks is the number of TICK messages processed.
func (c *Client) Ticks() uint64 { return c.ticks }

// Run connects and serves ticks until ctx is done, the host closes the connection or a
// bot fails. A context cancellation returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.opts.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.opts.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.opts.URL, err)
	}
	defer conn.Close()

	if err := c.handshake(conn); err != nil {
		return err
	}

	wctx, stopWriter := context.WithCancel(ctx)
	defer stopWriter()

	out := make(chan []byte, 64)
	writeErr := make(chan error, 1)
	writerDone := make(chan struct{})

	// Writer goroutine.
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-wctx.Done():
				return
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					_ = conn.Close()
					return
				}
			}
		}
	}()
	runDone := make(chan struct{})
	defer close(runDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-runDone:
		}
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case werr := <-writeErr:
				return fmt.Errorf("write: %w", werr)
			default:
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := c.handle(wctx, msg, out); err != nil {
			stopWriter()
			<-writerDone
			c.sendError(conn, err)
			return err
		}
	}
}

func (c *Client) handshake(conn *websocket.Conn) error {
	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		Bots:            c.mgr.Entries(),
	}
	if err := writeJSON(conn, hello, c.opts.WriteTimeout); err != nil {
		return fmt.Errorf("send HELLO: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.opts.HandshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read WELCOME: %w", err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return fmt.Errorf("decode WELCOME: %w", err)
	}
	switch base.Type {
	case protocol.TypeWelcome:
	case protocol.TypeError:
		var e protocol.ErrorMsg
		_ = json.Unmarshal(msg, &e)
		return fmt.Errorf("host rejected HELLO: %s %s", e.Code, e.Message)
	default:
		return fmt.Errorf("expected WELCOME, got %q", base.Type)
	}
	if base.ProtocolVersion != protocol.Version {
		return fmt.Errorf("host protocol_version %q, want %q", base.ProtocolVersion, protocol.Version)
	}
	if err := json.Unmarshal(msg, &c.welcome); err != nil {
		return fmt.Errorf("decode WELCOME: %w", err)
	}
	if len(c.welcome.Accepted) > 0 {
		c.mgr.Retain(c.welcome.Accepted)
	}
	if c.mgr.Len() == 0 {
		return fmt.Errorf("host accepted none of the registered bots")
	}
	c.log.WithFields(logrus.Fields{
		"tick_rate": c.welcome.TickRateHz,
		"players":   c.welcome.NumPlayers,
		"bots":      c.mgr.Len(),
	}).Info("WELCOME")
	return nil
}

func (c *Client) handle(ctx context.Context, msg []byte, out chan<- []byte) error {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		c.log.WithError(err).Warn("undecodable message dropped")
		return nil
	}
	switch base.Type {
	case protocol.TypeTick:
	case protocol.TypeError:
		var e protocol.ErrorMsg
		_ = json.Unmarshal(msg, &e)
		c.log.WithFields(logrus.Fields{"code": e.Code, "message": e.Message}).Warn("host error")
		if e.Code == protocol.ErrProtoVersion {
			return fmt.Errorf("host: %s %s", e.Code, e.Message)
		}
		return nil
	default:
		return nil
	}
	if base.ProtocolVersion != "" && base.ProtocolVersion != protocol.Version {
		c.log.WithField("protocol_version", base.ProtocolVersion).Warn("tick with foreign protocol version dropped")
		return nil
	}
	if c.opts.Validator != nil {
		if err := c.opts.Validator.Validate(protocol.TypeTick, msg); err != nil {
			c.log.WithError(err).Warn("invalid tick dropped")
			return nil
		}
	}

	var tick protocol.TickMsg
	if err := json.Unmarshal(msg, &tick); err != nil {
		c.log.WithError(err).Warn("undecodable tick dropped")
		return nil
	}
	c.ticks++

	outs, err := c.mgr.Tick(&tick)
	if err != nil {
		return err
	}
	for _, o := range outs {
		b, err := json.Marshal(protocol.ControllerMsg{
			Type:            protocol.TypeController,
			ProtocolVersion: protocol.Version,
			FrameNum:        tick.GameInfo.FrameNum,
			PlayerIndex:     o.Index,
			Controller:      o.Controller,
		})
		if err != nil {
			return err
		}
		select {
		case out <- b:
		case <-ctx.Done():
			return nil
		}
	}
	for _, s := range c.opts.Sinks {
		if err := s.OnTick(msg, &tick, outs); err != nil {
			c.log.WithError(err).Warn("tick sink failed")
		}
	}
	return nil
}

func (c *Client) sendError(conn *websocket.Conn, err error) {
	_ = writeJSON(conn, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            protocol.ErrPolicy,
		Message:         err.Error(),
	}, c.opts.WriteTimeout)
}

func writeJSON(conn *websocket.Conn, v any, timeout time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
