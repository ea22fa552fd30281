package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"matchmaker/infrastructure/ws"
	"matchmaker/internal/entity"
	"matchmaker/internal/usecase"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// presenceTimeout bounds the offline write made when a room empties.
const presenceTimeout = 5 * time.Second

type WebsocketHandler struct {
	hub       ws.IHub
	authUc    usecase.AuthUsecase
	userUc    usecase.UserUsecase
	messageUc usecase.MessageUsecase
	upgrader  websocket.Upgrader
}

func NewWebsocketHandler(hub ws.IHub, authUc usecase.AuthUsecase, userUc usecase.UserUsecase, messageUc usecase.MessageUsecase, allowedOrigins []string) *WebsocketHandler {
	return &WebsocketHandler{
		hub:       hub,
		authUc:    authUc,
		userUc:    userUc,
		messageUc: messageUc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// GET /ws?token=
func (h *WebsocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := h.authUc.ValidateAccessToken(r.URL.Query().Get("token"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"message": "invalid or expired token", "data": nil})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	ctx := r.Context()
	client := ws.NewClient(claims.UserId, h.hub, conn)
	h.hub.RegisterClient(client)

	go client.WritePump()
	client.ReadPump(func(data []byte) {
		h.handleMessage(ctx, client, data)
	})
}

// HandleRoomEmpty marks a user offline once none of their connections is
// left in their room.
func (h *WebsocketHandler) HandleRoomEmpty(room string) error {
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	return h.userUc.SetOnline(ctx, room, false)
}

func (h *WebsocketHandler) handleMessage(ctx context.Context, client *ws.UserClient, data []byte) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		h.sendError(client, "malformed frame")
		return
	}

	switch envelope.Event {
	case entity.EventJoinRoom:
		h.handleJoinRoom(ctx, client, envelope.Data)
	case entity.EventSendMessage:
		h.handleSendMessage(ctx, client, envelope.Data)
	default:
		h.sendError(client, "unknown event")
	}
}

func (h *WebsocketHandler) handleJoinRoom(ctx context.Context, client *ws.UserClient, data json.RawMessage) {
	var req JoinRoomRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			h.sendError(client, "malformed joinRoom payload")
			return
		}
	}
	if req.UserId == "" {
		req.UserId = client.UserId
	}
	if req.UserId != client.UserId {
		h.sendError(client, "cannot join another user's room")
		return
	}

	h.hub.JoinRoom(client, req.UserId)
	if err := h.userUc.SetOnline(ctx, req.UserId, true); err != nil {
		log.WithError(err).WithField("userId", req.UserId).Warn("set online failed")
	}

	h.send(client, entity.EventRoomJoined, RoomJoinedResponse{UserId: req.UserId})
}

func (h *WebsocketHandler) handleSendMessage(ctx context.Context, client *ws.UserClient, data json.RawMessage) {
	var req SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(client, "malformed sendMessage payload")
		return
	}
	if req.SenderId == "" {
		req.SenderId = client.UserId
	}
	if req.SenderId != client.UserId {
		h.sendError(client, "cannot send as another user")
		return
	}

	message, err := h.messageUc.Send(ctx, req.SenderId, req.ReceiverId, req.Message)
	if err != nil {
		h.sendError(client, errorMessage(err))
		return
	}

	h.send(client, entity.EventMessageSent, message)
}

func (h *WebsocketHandler) send(client *ws.UserClient, event string, data any) {
	payload, err := Encode(event, data)
	if err != nil {
		log.WithError(err).WithField("event", event).Error("encode event")
		return
	}
	h.hub.SendToClient(client, payload)
}

func (h *WebsocketHandler) sendError(client *ws.UserClient, message string) {
	h.send(client, entity.EventError, ErrorResponse{Message: message})
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrInvalidMessage),
		errors.Is(err, usecase.ErrSelfAction),
		errors.Is(err, usecase.ErrUserNotFound):
		return err.Error()
	}
	log.WithError(err).Error("send message failed")
	return "internal server error"
}
