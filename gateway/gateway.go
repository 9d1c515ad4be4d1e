package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"realchat/domain"
	"realchat/domain/event"
	"realchat/errors"
	"realchat/runtime"
	"realchat/services"
)

var errUnknownEvent = fmt.Errorf("unknown event")

type Gateway struct {
	log          *slog.Logger
	auth         services.IAuthService
	directory    services.IDirectoryService
	messages     services.IMessageService
	presence     *runtime.PresenceRegistry
	groups       *runtime.Groups
	hub          *Hub
	upgrader     websocket.Upgrader
	historyLimit int
	bufferSize   int
}

func NewGateway(log *slog.Logger, hub *Hub, auth services.IAuthService,
	directory services.IDirectoryService, messages services.IMessageService,
	presence *runtime.PresenceRegistry, groups *runtime.Groups,
	historyLimit, bufferSize int) *Gateway {
	return &Gateway{
		log:       log,
		auth:      auth,
		directory: directory,
		messages:  messages,
		presence:  presence,
		groups:    groups,
		hub:       hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		historyLimit: historyLimit,
		bufferSize:   bufferSize,
	}
}

func (g *Gateway) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", g.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and runs its read loop until
// disconnect. Inbound actions of one connection are handled strictly in
// the order received; connections do not block each other.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	session := NewSession(uuid.NewString(), conn, g.bufferSize, g.log)
	g.hub.Register(session)
	g.log.Debug("Connection opened", "conn_id", session.ID())

	go session.writePump()
	g.readPump(session)
}

func (g *Gateway) readPump(session *Session) {
	defer g.close(session)

	session.conn.SetReadLimit(maxMessageSize)
	_ = session.conn.SetReadDeadline(time.Now().Add(pongWait))
	session.conn.SetPongHandler(func(string) error {
		return session.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				g.log.Warn("Websocket read failed", "conn_id", session.ID(), "error", err)
			}
			return
		}

		var envelope Envelope
		if err = json.Unmarshal(raw, &envelope); err != nil {
			session.emitError("envelope", err)
			continue
		}
		g.dispatch(session, envelope)
	}
}

// close tears a connection down: leave every broadcast group, release
// presence (announcing offline when this was the user's last
// connection), and stop the write pump.
func (g *Gateway) close(session *Session) {
	g.groups.UnsubscribeAll(session.ID())
	g.presence.Unbind(session.ID())
	g.hub.Unregister(session.ID())
	session.closeSend()
	_ = session.conn.Close()
	g.log.Debug("Connection closed", "conn_id", session.ID())
}

// dispatch routes one inbound action. Every action except authenticate
// requires a bound user; violations get not_authed and are not fatal to
// the connection.
func (g *Gateway) dispatch(session *Session, envelope Envelope) {
	if envelope.Event == "authenticate" {
		g.handleAuthenticate(session, envelope.Data)
		return
	}

	user, ok := session.connection.Authenticated()
	if !ok {
		session.emit("not_authed", nil)
		return
	}

	switch envelope.Event {
	case "join_conv":
		g.handleJoinConv(session, user, envelope.Data)
	case "create_conv":
		g.handleCreateConv(session, user, envelope.Data)
	case "send_message":
		g.handleSendMessage(session, user, envelope.Data)
	case "mark_read":
		g.handleMarkRead(session, user, envelope.Data)
	default:
		g.log.Debug("Unknown event", "conn_id", session.ID(), "event", envelope.Event)
		session.emitError(envelope.Event, errUnknownEvent)
	}
}

func (g *Gateway) handleAuthenticate(session *Session, data json.RawMessage) {
	var payload authenticatePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Token == "" {
		session.emit("auth_error", nil)
		return
	}

	user, err := g.auth.Resolve(payload.Token)
	if err != nil {
		// The connection stays unauthenticated; retries are allowed.
		session.emit("auth_error", nil)
		return
	}

	session.connection = session.connection.Bind(user)
	g.presence.Bind(session.ID(), user.ID)
	session.emit("auth_ok", authOkPayload{UserID: user.ID, Username: user.Username})
}

func (g *Gateway) handleJoinConv(session *Session, user domain.User, data json.RawMessage) {
	var payload joinConvPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		session.emitError("join_conv", err)
		return
	}

	conv, err := g.directory.Get(payload.ConvID)
	if err != nil {
		session.emitError("join_conv", err)
		return
	}
	if !conv.HasParticipant(user.ID) {
		session.emitError("join_conv", errors.ErrNotParticipant)
		return
	}

	g.groups.Subscribe(conv.ID, session.ID(), session)

	history, err := g.messages.History(conv.ID, g.historyLimit)
	if err != nil {
		session.emitError("join_conv", err)
		return
	}
	if err = session.Consume(context.Background(), event.History{ConvID: conv.ID, Messages: history}); err != nil {
		g.log.Debug("History delivery dropped", "conn_id", session.ID(), "conv_id", conv.ID)
	}
}

func (g *Gateway) handleCreateConv(session *Session, user domain.User, data json.RawMessage) {
	var payload createConvPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		session.emitError("create_conv", err)
		return
	}

	conv, err := g.directory.Create(user.ID, payload.ParticipantIDs, payload.Title)
	if err != nil {
		session.emitError("create_conv", err)
		return
	}

	// Only the requesting connection learns about the new conversation.
	if err = session.Consume(context.Background(), event.ConversationCreated{Conversation: conv}); err != nil {
		g.log.Debug("Creation ack dropped", "conn_id", session.ID(), "conv_id", conv.ID)
	}
}

func (g *Gateway) handleSendMessage(session *Session, user domain.User, data json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		session.emitError("send_message", err)
		return
	}

	conv, err := g.directory.Get(payload.ConvID)
	if err != nil {
		session.emitError("send_message", err)
		return
	}
	if !conv.HasParticipant(user.ID) {
		session.emitError("send_message", errors.ErrNotParticipant)
		return
	}

	message, err := g.messages.Append(conv.ID, user.ID, payload.Text)
	if err != nil {
		session.emitError("send_message", err)
		return
	}

	// Fan out to every subscribed connection, the sender's included.
	g.groups.Broadcast(context.Background(), conv.ID, event.NewMessage{Message: message})
}

func (g *Gateway) handleMarkRead(session *Session, user domain.User, data json.RawMessage) {
	var payload markReadPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		session.emitError("mark_read", err)
		return
	}

	messageID, err := uuid.Parse(payload.MessageID)
	if err != nil {
		session.emitError("mark_read", err)
		return
	}

	message, err := g.messages.MarkRead(messageID, user.ID)
	if err != nil {
		session.emitError("mark_read", err)
		return
	}

	// Route on the stored conversation, not the claimed one.
	g.groups.Broadcast(context.Background(), message.ConvID, event.MessageRead{
		ConvID:    message.ConvID,
		MessageID: message.ID.String(),
		UserID:    user.ID,
	})
}
