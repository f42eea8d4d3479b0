package handlers

import (
	"chatstats-backend/internal/models"
	"chatstats-backend/internal/services"
	"chatstats-backend/pkg/httputil"
	"errors"
	"log"
	"net/http"
)

// maxMessageBodyBytes caps the size of a posted message body.
const maxMessageBodyBytes = 64 << 10

// ChatHandlers handles HTTP requests for the conversation.
type ChatHandlers struct {
	session *services.ChatSession
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(session *services.ChatSession) *ChatHandlers {
	return &ChatHandlers{
		session: session,
	}
}

// HandleGetSession returns messages, typing flag and chart data in one response.
func (h *ChatHandlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.session.State(r.Context())
	if err != nil {
		log.Printf("ERROR [ChatHandlers] HandleGetSession: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to read session")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, state)
}

// HandleListMessages returns the conversation snapshot.
func (h *ChatHandlers) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.session.Snapshot(r.Context())
	if err != nil {
		log.Printf("ERROR [ChatHandlers] HandleListMessages: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to read messages")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.MessagesResponse{
		Messages: messages,
		IsTyping: h.session.IsTyping(),
	})
}

// HandleSendMessage appends a user message and waits for the assistant's reply.
func (h *ChatHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := httputil.DecodeJSON(w, r, &req, maxMessageBodyBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.session.SendMessage(r.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			httputil.RespondError(w, http.StatusBadRequest, "Message must not be empty")
		case errors.Is(err, services.ErrBusy):
			httputil.RespondError(w, http.StatusConflict, "A reply is already pending")
		default:
			log.Printf("ERROR [ChatHandlers] HandleSendMessage: %v", err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to send message")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
