// Package wshub provides a websocket transport for the hub, used by
// out-of-process plugins participating in the change protocol.
package wshub

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/SpikedPunchVictim/gaia/hub"
	"github.com/SpikedPunchVictim/gaia/log"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 60 * time.Second
)

// conn adapts one websocket to a hub connection. The wire format is a text
// message per hub message: subject, optionally '#' and the token, optionally
// a newline and the body.
type conn struct {
	id   int64
	wc   *websocket.Conn
	send chan *hub.Msg
}

func newConn(id int64, wc *websocket.Conn) *conn {
	return &conn{id: id, wc: wc, send: make(chan *hub.Msg, 32)}
}

func (c *conn) ID() int64             { return c.id }
func (c *conn) Chan() chan<- *hub.Msg { return c.send }

// readAll reads messages and forwards them to route until the websocket
// closes. A normal client disconnect returns nil.
func (c *conn) readAll(route chan<- *hub.Msg) error {
	for {
		op, r, err := c.wc.NextReader()
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			if cerr, ok := err.(*websocket.CloseError); ok && cerr.Code == websocket.CloseGoingAway {
				return nil
			}
			return errors.Wrap(err, "wshub next reader")
		}
		if op != websocket.TextMessage {
			continue
		}
		m, err := readMsg(r)
		if err != nil {
			return errors.Wrap(err, "wshub read msg")
		}
		m.From = c
		route <- m
	}
}

// writeAll writes queued messages and keep-alive pings until the send
// channel closes.
func (c *conn) writeAll(l log.Logger) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	defer c.wc.Close()
Outer:
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				break Outer
			}
			if msg == nil {
				break Outer
			}
			if err := c.writeMsg(msg); err != nil {
				l.Error("wshub write msg", "id", c.id, "err", err)
				return
			}
		case <-t.C:
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
	c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.wc.WriteMessage(websocket.CloseMessage, []byte{})
}

func readMsg(r io.Reader) (*hub.Msg, error) {
	var b bytes.Buffer
	if _, err := b.ReadFrom(r); err != nil {
		return nil, err
	}
	var tok, body []byte
	head := b.Bytes()
	if idx := bytes.IndexByte(head, '\n'); idx >= 0 {
		head, body = head[:idx], head[idx+1:]
	}
	if idx := bytes.IndexByte(head, '#'); idx >= 0 {
		head, tok = head[:idx], head[idx+1:]
	}
	if len(head) == 0 {
		return nil, errors.New("message without subject")
	}
	return &hub.Msg{
		Subj: string(head),
		Tok:  copyBytes(tok),
		Raw:  copyBytes(body),
	}, nil
}

func (c *conn) writeMsg(m *hub.Msg) error {
	var b bytes.Buffer
	b.WriteString(m.Subj)
	if len(m.Tok) != 0 {
		b.WriteByte('#')
		b.Write(m.Tok)
	}
	if len(m.Raw) != 0 {
		b.WriteByte('\n')
		b.Write(m.Raw)
	} else if m.Data != nil {
		b.WriteByte('\n')
		if err := json.NewEncoder(&b).Encode(m.Data); err != nil {
			return err
		}
	}
	c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.wc.WriteMessage(websocket.TextMessage, b.Bytes())
}

func copyBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	res := make([]byte, len(b))
	copy(res, b)
	return res
}
