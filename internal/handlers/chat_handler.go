// File: internal/handlers/chat_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/services"
	"github.com/iyunix/go-gemchat/internal/services/ai"
	"github.com/iyunix/go-gemchat/internal/services/conversation"
	"github.com/iyunix/go-gemchat/internal/services/history"
)

// maxPromptBytes caps request bodies on the completion endpoint.
const maxPromptBytes = 64 << 10

// ChatLister is the chat-list side of the service layer.
type ChatLister interface {
	ListChats(ctx context.Context) ([]domain.ChatRecord, error)
	CreateChat(ctx context.Context) (domain.ChatRecord, error)
	GetChatHistory(ctx context.Context) (history.Grouped, error)
}

// Conversations is the language-model side of the service layer.
type Conversations interface {
	Send(ctx context.Context, conversationID, prompt string) (*conversation.Reply, error)
	History(ctx context.Context, conversationID string) ([]domain.Message, error)
	Reset(ctx context.Context, conversationID string) error
}

// HTMLRenderer converts a markdown reply into safe HTML.
type HTMLRenderer interface {
	ToHTML(markdown string) (string, error)
}

type ChatHandler struct {
	chats         ChatLister
	conversations Conversations
	renderer      HTMLRenderer
	logger        services.Logger
}

func NewChatHandler(chats ChatLister, conversations Conversations, renderer HTMLRenderer, logger services.Logger) (*ChatHandler, error) {
	if chats == nil || conversations == nil {
		return nil, errors.New("chat handler: chat and conversation services are required")
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &ChatHandler{
		chats:         chats,
		conversations: conversations,
		renderer:      renderer,
		logger:        logger,
	}, nil
}

type responseRequest struct {
	UserInput      string `json:"user_input"`
	ConversationID string `json:"conversation_id"`
}

type responsePayload struct {
	Response       string `json:"response"`
	ResponseHTML   string `json:"response_html,omitempty"`
	ConversationID string `json:"conversation_id"`
}

// GetChats returns the chat list.
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chats.ListChats(r.Context())
	if err != nil {
		writeError(w, "Could not retrieve chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// CreateChat appends a new chat and returns it.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	created, err := h.chats.CreateChat(r.Context())
	if err != nil {
		writeError(w, "Could not create chat", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetChatHistory returns the chat list grouped into relative date buckets.
func (h *ChatHandler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.chats.GetChatHistory(r.Context())
	if err != nil {
		var perr *history.ParseError
		if errors.As(err, &perr) {
			writeError(w, "Chat store is corrupt: "+perr.Error(), http.StatusInternalServerError)
			return
		}
		writeError(w, "Could not retrieve chat history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

// GetResponse forwards the user's message to the language model.
// Accepts form fields or a JSON body with user_input and conversation_id.
func (h *ChatHandler) GetResponse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPromptBytes)

	req, err := decodeResponseRequest(r)
	if err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	reply, err := h.conversations.Send(r.Context(), req.ConversationID, req.UserInput)
	if err != nil {
		h.writeConversationError(w, err)
		return
	}

	payload := responsePayload{Response: reply.Text, ConversationID: reply.ConversationID}
	if h.renderer != nil {
		html, rerr := h.renderer.ToHTML(reply.Text)
		if rerr != nil {
			h.logger.Warn("failed to render reply markdown", "conversation_id", reply.ConversationID, "error", rerr)
		} else {
			payload.ResponseHTML = html
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

// GetConversation returns the turns of one conversation.
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	msgs, err := h.conversations.History(r.Context(), id)
	if err != nil {
		h.writeConversationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": id,
		"messages":        msgs,
	})
}

// DeleteConversation forgets one conversation.
func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.conversations.Reset(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeConversationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) writeConversationError(w http.ResponseWriter, err error) {
	var convErr *conversation.ConversationError
	if !errors.As(err, &convErr) {
		h.logger.Error("unexpected conversation error", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	switch convErr.Type {
	case conversation.ErrTypeValidation:
		writeError(w, convErr.Message, http.StatusBadRequest)
	case conversation.ErrTypeNotFound:
		writeError(w, convErr.Message, http.StatusNotFound)
	case conversation.ErrTypeProvider:
		h.logger.Error("language model call failed", "conversation_id", convErr.ConversationID, "error", err)
		writeError(w, providerMessage(convErr), http.StatusBadGateway)
	default:
		writeError(w, convErr.Message, http.StatusInternalServerError)
	}
}

// providerMessage is the client-facing text for an upstream failure. The
// wrapped error chain stays in the server log.
func providerMessage(convErr *conversation.ConversationError) string {
	var aiErr *ai.AIError
	if errors.As(convErr.Cause, &aiErr) && aiErr.Message != "" {
		return convErr.Message + ": " + aiErr.Message
	}
	return convErr.Message
}

func decodeResponseRequest(r *http.Request) (responseRequest, error) {
	var req responseRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.UserInput = r.PostFormValue("user_input")
		req.ConversationID = r.PostFormValue("conversation_id")
	}

	req.ConversationID = strings.TrimSpace(req.ConversationID)
	return req, nil
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
