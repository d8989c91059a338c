package wshub

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/SpikedPunchVictim/gaia/hub"
	"github.com/SpikedPunchVictim/gaia/log"
)

// Client is a hub connection dialing into a remote engine over websocket.
type Client struct {
	url  string
	id   int64
	send chan *hub.Msg
	*websocket.Dialer
	// Header is sent with the dial request, usually carrying the auth
	// token.
	Header http.Header
	Log    log.Logger
}

// NewClient returns a new unconnected client for the given url.
func NewClient(url string) *Client {
	return &Client{url: url, id: hub.NextID(), send: make(chan *hub.Msg, 32)}
}

func (c *Client) ID() int64             { return c.id }
func (c *Client) Chan() chan<- *hub.Msg { return c.send }

// Connect dials the remote hub and pumps messages to r until disconnect.
func (c *Client) Connect(r chan<- *hub.Msg) error {
	c.init()
	wc, _, err := c.Dial(c.url, c.Header)
	if err != nil {
		return err
	}
	cc := &conn{id: c.id, wc: wc, send: c.send}
	r <- &hub.Msg{From: c, Subj: hub.SubjSignon}
	go cc.writeAll(c.Log)
	err = cc.readAll(r)
	r <- &hub.Msg{From: c, Subj: hub.SubjSignoff}
	return err
}

func (c *Client) init() {
	if c.Dialer == nil {
		c.Dialer = websocket.DefaultDialer
	}
	if c.Log == nil {
		c.Log = log.Root
	}
}
