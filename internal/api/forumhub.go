package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/forumhub/forumhub/internal/chat"
	"github.com/forumhub/forumhub/internal/config"
	"github.com/forumhub/forumhub/internal/database"
	"github.com/forumhub/forumhub/internal/presence"
	"github.com/gorilla/handlers"
)

type ForumHubApp struct {
	log            *log.Logger
	db             database.ForumRepository
	mux            *http.Server
	cs             *chat.ChatServer
	presence       *presence.Tracker
	signingKey     []byte
	allowedOrigins []string
}

func NewForumHubApp(mux *http.ServeMux, logger *log.Logger, cs *chat.ChatServer, db database.ForumRepository, tracker *presence.Tracker, cfg *config.Config) *ForumHubApp {
	s := &ForumHubApp{
		log:            logger,
		db:             db,
		cs:             cs,
		presence:       tracker,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("/api/account", s.authMiddleware(s.account))
	mux.Handle("GET /api/rooms", s.authMiddleware(s.getRooms))
	mux.Handle("GET /api/messages", s.authMiddleware(s.getMessages))
	mux.Handle("GET /api/conversations", s.authMiddleware(s.getConversations))
	mux.Handle("GET /api/conversations/messages", s.authMiddleware(s.getConversationMessages))
	mux.Handle("GET /api/users/search", s.authMiddleware(s.searchUsers))
	mux.Handle("GET /api/users/online", s.authMiddleware(s.getOnlineUsers))
	mux.Handle("POST /api/posts", s.authMiddleware(s.createPost))
	mux.Handle("GET /api/posts", s.authMiddleware(s.getPosts))
	mux.Handle("POST /api/replies", s.authMiddleware(s.createReply))
	mux.Handle("GET /api/replies", s.authMiddleware(s.getReplies))
	mux.Handle("DELETE /api/replies", s.authMiddleware(s.deleteReply))
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *ForumHubApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *ForumHubApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
