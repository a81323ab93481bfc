package handlers

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-gemchat/internal/middleware"
	"github.com/iyunix/go-gemchat/internal/ratelimit"
	"github.com/iyunix/go-gemchat/internal/services"
)

// RouterDeps groups what NewRouter wires together.
type RouterDeps struct {
	Chat    *ChatHandler
	Pages   *PageHandler
	Logs    *LogHandler
	Static  fs.FS
	Limiter *ratelimit.MemoryRateLimiter
	Logger  services.Logger
}

// NewRouter builds the full route table. CORS wraps the router itself so
// preflight requests are answered before method matching.
func NewRouter(d RouterDeps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RecoverPanic(d.Logger))
	r.Use(middleware.Logging(d.Logger))

	if d.Static != nil {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}
	r.HandleFunc("/", d.Pages.ShowIndexPage).Methods(http.MethodGet)
	r.HandleFunc("/health", d.Pages.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/log", d.Logs.LogFrontendEvent).Methods(http.MethodPost)

	r.HandleFunc("/chats", d.Chat.GetChats).Methods(http.MethodGet)
	r.HandleFunc("/chats", d.Chat.CreateChat).Methods(http.MethodPost)
	r.HandleFunc("/get_chat_history", d.Chat.GetChatHistory).Methods(http.MethodGet)

	var completion http.Handler = http.HandlerFunc(d.Chat.GetResponse)
	if d.Limiter != nil {
		completion = middleware.RateLimit(d.Limiter, "completion", d.Logger)(completion)
	}
	r.Handle("/get_response", completion).Methods(http.MethodPost)

	r.HandleFunc("/conversations/{id}", d.Chat.GetConversation).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}", d.Chat.DeleteConversation).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(d.Pages.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(d.Pages.MethodNotAllowed)
	return middleware.CORS(r)
}
