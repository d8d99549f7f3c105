// Package wsstream bridges a supervised process and a WebSocket
// client: merged output events go out as JSON messages, and "input"
// messages from the client are forwarded to the process's stdin.
package wsstream

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"shepherd/pkg/render"
	"shepherd/pkg/supervise"
)

// Message is the wire format exchanged with the client.
type Message struct {
	// Type is "output", "exit", or (client to server) "input".
	Type     string    `json:"type"`
	Channel  string    `json:"channel,omitempty"`
	Data     string    `json:"data,omitempty"`
	HTML     string    `json:"html,omitempty"`
	ExitCode int       `json:"exit_code,omitempty"`
	Signal   string    `json:"signal,omitempty"`
	Time     time.Time `json:"time,omitzero"`
}

// Options configures a streaming session.
type Options struct {
	// RenderHTML attaches a sanitized HTML rendering of each chunk,
	// for clients that display output in a browser.
	RenderHTML bool
}

// Stream forwards events from the handle to conn until the process
// exits, the context is cancelled, or the connection breaks. A final
// "exit" message carries the exit code. Input messages received from
// the client are written to the process's stdin for as long as the
// connection lasts.
//
// Stream does not own the supervisor; the caller remains responsible
// for Stop.
func Stream(ctx context.Context, conn *websocket.Conn, h *supervise.Handle, opts Options) error {
	// Reader side: client input lines to stdin. Exits when the
	// connection is closed or errors.
	go func() {
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == "input" {
				h.WriteLine(msg.Data)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-h.Events():
			if !ok {
				return conn.WriteJSON(Message{
					Type:     "exit",
					ExitCode: h.ExitCode(),
					Signal:   h.Signal(),
				})
			}
			msg := Message{
				Type:    "output",
				Channel: ev.Channel.String(),
				Data:    ev.Text(),
				Time:    ev.Time,
			}
			if opts.RenderHTML {
				msg.HTML = render.ToHTML(ev.Text())
			}
			if err := conn.WriteJSON(msg); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return err
			}
		}
	}
}
