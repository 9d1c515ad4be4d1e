package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"realchat/domain"
	"realchat/domain/event"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 8192
)

// Session owns one websocket connection. The connection's state machine
// (Unauthenticated -> Authenticated -> Closed) is only ever touched by
// the read loop, so it needs no lock; other goroutines interact with the
// session exclusively through the buffered send channel.
type Session struct {
	connection domain.Connection
	conn       *websocket.Conn
	send       chan []byte
	log        *slog.Logger
	closeOnce  sync.Once
}

func NewSession(id string, conn *websocket.Conn, bufferSize int, log *slog.Logger) *Session {
	return &Session{
		connection: domain.NewConnection(id),
		conn:       conn,
		send:       make(chan []byte, bufferSize),
		log:        log,
	}
}

func (s *Session) ID() string {
	return s.connection.ID
}

// Consume implements contract.EventSink: it frames the event and queues
// it for the write pump. The send never blocks; a connection that
// cannot keep up loses the event rather than stalling the broadcaster.
func (s *Session) Consume(_ context.Context, e event.DomainEvent) error {
	data, err := marshalEvent(e)
	if err != nil {
		return err
	}
	return s.enqueue(data)
}

// emit sends a named event to this connection only.
func (s *Session) emit(eventName string, payload any) {
	data, err := marshalEnvelope(eventName, payload)
	if err != nil {
		s.log.Error("Failed to frame event", "event", eventName, "error", err)
		return
	}
	if err = s.enqueue(data); err != nil {
		s.log.Debug("Outbound event dropped", "conn_id", s.ID(), "event", eventName, "error", err)
	}
}

func (s *Session) emitError(op string, err error) {
	s.emit("error", errorPayload{Op: op, Reason: err.Error()})
}

func (s *Session) enqueue(data []byte) error {
	defer func() {
		// Losing the race with closeSend is equivalent to the
		// connection being gone; swallow the panic on a closed channel.
		recover()
	}()
	select {
	case s.send <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full for connection %s", s.ID())
	}
}

// closeSend ends the write pump exactly once.
func (s *Session) closeSend() {
	s.closeOnce.Do(func() { close(s.send) })
}

// writePump drains the send channel onto the wire and keeps the
// connection alive with pings. One writer goroutine per connection;
// gorilla/websocket allows at most one concurrent writer.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
