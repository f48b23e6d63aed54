// Package notify publishes cell-change events over a ZeroMQ PUB socket, so
// that out-of-process observers (a logger, a second REPL, a dashboard) can
// follow an engine.Context's recomputations without going through its
// websocket host. Wiring this into a running context is optional: a host
// that does not create a Notifier simply never publishes anything.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-zeromq/zmq4"
	"github.com/cellengine/cellengine/internal/sheet"
)

// Event is one cell's new displayed value.
type Event struct {
	Sheet uint64 `json:"sheet"`
	Row   int32  `json:"row"`
	Col   int32  `json:"col"`
	Kind  string `json:"kind"`
	Num   float64 `json:"num,omitempty"`
	Str   string  `json:"str,omitempty"`
}

// Notifier wraps a zmq4 PUB socket bound to an address, publishing one
// JSON-encoded Event per message under the "cell" topic.
type Notifier struct {
	sock zmq4.Socket
	ctx  context.Context
}

// New binds a PUB socket at addr (e.g. "tcp://127.0.0.1:5556") and returns a
// Notifier ready to publish. Callers must Close it when done.
func New(addr string) (*Notifier, error) {
	ctx := context.Background()
	sock := zmq4.NewPub(ctx)
	if err := sock.Listen(addr); err != nil {
		return nil, fmt.Errorf("notify: listen %s: %w", addr, err)
	}
	return &Notifier{sock: sock, ctx: ctx}, nil
}

// Close releases the underlying socket.
func (n *Notifier) Close() error { return n.sock.Close() }

// PublishNumber publishes a numeric cell update.
func (n *Notifier) PublishNumber(h sheet.Handle, row, col int32, v float64) {
	n.publish(Event{Sheet: uint64(h), Row: row, Col: col, Kind: "number", Num: v})
}

// PublishString publishes a string cell update.
func (n *Notifier) PublishString(h sheet.Handle, row, col int32, s string) {
	n.publish(Event{Sheet: uint64(h), Row: row, Col: col, Kind: "string", Str: s})
}

// PublishError publishes an error cell update.
func (n *Notifier) PublishError(h sheet.Handle, row, col int32, msg string) {
	n.publish(Event{Sheet: uint64(h), Row: row, Col: col, Kind: "error", Str: msg})
}

func (n *Notifier) publish(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	msg := zmq4.NewMsgFrom([]byte("cell"), body)
	_ = n.sock.Send(msg)
}
