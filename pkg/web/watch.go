package web

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-eyes/internal/log"
	"github.com/teslashibe/go-eyes/pkg/protocol"
)

// EventsPath is the WebSocket route that streams set changes.
const EventsPath = "/ws/events"

// EventsURL turns a server address such as "localhost:8090",
// "http://host:8090" or "ws://host:8090/ws/events" into the events URL.
func EventsURL(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("web: unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = EventsPath
	}
	return u.String(), nil
}

// Watch connects to a server's event stream and calls fn for every message
// until ctx is canceled or the connection fails. Cancellation returns nil.
func Watch(ctx context.Context, addr string, fn func(*protocol.Message)) error {
	wsURL, err := EventsURL(addr)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("web: dial %s: %w", wsURL, err)
	}
	defer conn.Close()
	log.Debug("watching events", "url", wsURL)

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) && ce.Code == websocket.CloseNormalClosure {
				return nil
			}
			return fmt.Errorf("web: read events: %w", err)
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Debug("ignoring event", "error", err)
			continue
		}
		fn(msg)
	}
}
