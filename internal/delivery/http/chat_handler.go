package http

import (
	"net/http"
	"strconv"
	"time"

	"matchmaker/internal/entity"
	"matchmaker/internal/usecase"

	"github.com/go-chi/chi/v5"
)

type ChatHandler struct {
	messageUc usecase.MessageUsecase
}

func NewChatHandler(messageUc usecase.MessageUsecase) *ChatHandler {
	return &ChatHandler{
		messageUc: messageUc,
	}
}

// GET /api/chat/messages?senderId=&receiverId=&limit=&before=
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	requesterId := claimsFrom(r).UserId
	query := r.URL.Query()

	filter := entity.ConversationFilter{
		UserA: query.Get("senderId"),
		UserB: query.Get("receiverId"),
	}
	if filter.UserA == "" {
		filter.UserA = requesterId
	}

	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, Response{Message: "limit must be a non-negative integer"})
			return
		}
		filter.Limit = n
	}
	if before := query.Get("before"); before != "" {
		t, err := time.Parse(time.RFC3339Nano, before)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Response{Message: "before must be an RFC 3339 timestamp"})
			return
		}
		filter.Before = t
	}

	messages, err := h.messageUc.History(r.Context(), requesterId, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "success", Data: messages})
}

// GET /api/chat/messages/{id}
func (h *ChatHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	message, err := h.messageUc.Get(r.Context(), claimsFrom(r).UserId, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "success", Data: message})
}

// POST /api/chat/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	message, err := h.messageUc.Send(r.Context(), claimsFrom(r).UserId, req.ReceiverId, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Message: "message sent", Data: message})
}

// DELETE /api/chat/messages
func (h *ChatHandler) DeleteMessages(w http.ResponseWriter, r *http.Request) {
	var req deleteMessagesRequest
	if !decode(w, r, &req) {
		return
	}
	deleted, err := h.messageUc.Delete(r.Context(), claimsFrom(r).UserId, req.MessageIds)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "messages deleted", Data: map[string]int64{"deleted": deleted}})
}
