package bridge

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var bridgeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	bridgeLogger = l
}

// WSBridge talks to the host application over its local websocket endpoint.
type WSBridge struct {
	conn   *websocket.Conn
	events chan Message

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func DialWS(url string) (*WSBridge, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	b := &WSBridge{
		conn:   conn,
		events: make(chan Message, 16),
	}
	go b.readPump()

	return b, nil
}

func (b *WSBridge) readPump() {
	defer close(b.events)

	for {
		var msg Message
		if err := b.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				bridgeLogger.Warn().Err(err).Msg("Host bridge connection lost")
			}
			return
		}

		select {
		case b.events <- msg:
		default:
			// Nobody is draining events; dropping beats blocking the pump.
			bridgeLogger.Warn().Str("type", string(msg.Type)).Msg("Dropping host bridge message")
		}
	}
}

func (b *WSBridge) Post(msg Message) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.conn.WriteJSON(msg)
}

func (b *WSBridge) Events() <-chan Message {
	return b.events
}

func (b *WSBridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.writeMu.Lock()
		_ = b.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		b.writeMu.Unlock()
		err = b.conn.Close()
	})
	return err
}
