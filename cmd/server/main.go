package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"campushub/internal/auth"
	"campushub/internal/config"
	"campushub/internal/database"
	"campushub/internal/handlers"
	"campushub/internal/middleware"
	"campushub/internal/presence"
	"campushub/internal/services"
	"campushub/internal/websocket"
	"campushub/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.SetDebug(cfg.Debug)
	defer logger.Sync()

	// Run schema migrations before opening the pool
	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		logger.Fatal("Failed to run migrations: %v", err)
	}

	// Initialize database
	db, err := database.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Per-user event fan-out for directory changes
	events := websocket.NewEventHub()

	// Initialize services
	authService := auth.NewService(db, cfg)
	userService := services.NewUserService(db)
	searchService := services.NewSearchService(db)
	chatService := services.NewChatService(db, events)
	messageService := services.NewMessageService(db)
	presenceService := services.NewPresenceService(db)
	feedService := services.NewFeedService(db)
	learningService := services.NewLearningService(db)

	// Initialize WebSocket hub manager
	hubManager := websocket.NewManager()

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	userHandlers := handlers.NewUserHandlers(authService, userService, searchService, presenceService)
	chatHandlers := handlers.NewChatHandlers(authService, chatService, messageService, hubManager)
	feedHandlers := handlers.NewFeedHandlers(authService, feedService)
	learningHandlers := handlers.NewLearningHandlers(authService, learningService)
	wsHandlers := handlers.NewWebSocketHandlers(authService, chatService, messageService,
		presenceService, hubManager, events)

	limiters := middleware.NewLimiterStore(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, 10*time.Minute)

	// Setup routes
	mux := http.NewServeMux()
	setupRoutes(mux, limiters, authHandlers, userHandlers, chatHandlers, feedHandlers, learningHandlers, wsHandlers)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server started on http://localhost%s", cfg.Server.Port)
		logger.Info("WebSocket endpoint: ws://localhost%s/ws/{chatID}", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Sweeps connections that died without a clean offline write.
	g.Go(func() error {
		return presenceService.RunJanitor(ctx, presence.HeartbeatInterval)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Fatal("Server error: %v", err)
	}
}

func setupRoutes(mux *http.ServeMux, limiters *middleware.LimiterStore,
	authHandlers *handlers.AuthHandlers, userHandlers *handlers.UserHandlers,
	chatHandlers *handlers.ChatHandlers, feedHandlers *handlers.FeedHandlers,
	learningHandlers *handlers.LearningHandlers, wsHandlers *handlers.WebSocketHandlers) {

	// Auth routes, rate limited per client address
	mux.HandleFunc("/login", middleware.RateLimit(limiters, authHandlers.Login))
	mux.HandleFunc("/register", middleware.RateLimit(limiters, authHandlers.Register))

	// User routes
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		parts := pathParts(r)

		// /users/search
		if len(parts) == 2 && parts[1] == "search" && r.Method == http.MethodGet {
			userHandlers.SearchUsers(w, r)
			return
		}

		// /users/me
		if len(parts) == 2 && parts[1] == "me" && r.Method == http.MethodPut {
			userHandlers.UpdateProfile(w, r)
			return
		}

		// /users/{id}/presence
		if len(parts) == 3 && parts[2] == "presence" && r.Method == http.MethodGet {
			userHandlers.GetPresence(w, r)
			return
		}

		// /users/{id}
		if len(parts) == 2 && r.Method == http.MethodGet {
			userHandlers.GetUser(w, r)
			return
		}

		http.Error(w, "endpoint not found", http.StatusNotFound)
	})

	// Chat routes
	mux.HandleFunc("/chats", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chats" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		chatHandlers.ListChats(w, r)
	})

	mux.HandleFunc("/chats/", func(w http.ResponseWriter, r *http.Request) {
		parts := pathParts(r)
		if len(parts) < 2 || parts[1] == "" {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}

		// /chats/individual and /chats/group
		if len(parts) == 2 && r.Method == http.MethodPost {
			switch parts[1] {
			case "individual":
				chatHandlers.CreateIndividualChat(w, r)
				return
			case "group":
				chatHandlers.CreateGroupChat(w, r)
				return
			}
		}

		// /chats/{id}/messages
		if len(parts) == 3 && parts[2] == "messages" {
			switch r.Method {
			case http.MethodGet:
				chatHandlers.GetMessages(w, r)
			case http.MethodPost:
				chatHandlers.SendMessage(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		// /chats/{id}/name
		if len(parts) == 3 && parts[2] == "name" && r.Method == http.MethodPut {
			chatHandlers.RenameGroup(w, r)
			return
		}

		// /chats/{id}/leave
		if len(parts) == 3 && parts[2] == "leave" && r.Method == http.MethodDelete {
			chatHandlers.LeaveGroup(w, r)
			return
		}

		// /chats/{id}/members/{uid}
		if len(parts) == 4 && parts[2] == "members" && r.Method == http.MethodDelete {
			chatHandlers.RemoveMember(w, r)
			return
		}

		// /chats/{id}/admins/{uid}
		if len(parts) == 4 && parts[2] == "admins" && r.Method == http.MethodPost {
			chatHandlers.ToggleAdmin(w, r)
			return
		}

		// /chats/{id}
		if len(parts) == 2 {
			switch r.Method {
			case http.MethodGet:
				chatHandlers.GetChat(w, r)
			case http.MethodDelete:
				chatHandlers.DeleteChat(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		http.Error(w, "endpoint not found", http.StatusNotFound)
	})

	// Feed routes
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			feedHandlers.ListPosts(w, r)
		case http.MethodPost:
			feedHandlers.CreatePost(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		parts := pathParts(r)

		// /posts/{id}/like
		if len(parts) == 3 && parts[2] == "like" && r.Method == http.MethodPost {
			feedHandlers.ToggleLike(w, r)
			return
		}

		// /posts/{id}
		if len(parts) == 2 && r.Method == http.MethodDelete {
			feedHandlers.DeletePost(w, r)
			return
		}

		http.Error(w, "endpoint not found", http.StatusNotFound)
	})

	// Learning routes
	mux.HandleFunc("/learning", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/learning" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			learningHandlers.ListModules(w, r)
		case http.MethodPost:
			learningHandlers.CreateModule(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/learning/", func(w http.ResponseWriter, r *http.Request) {
		parts := pathParts(r)

		// /learning/{id}/progress
		if len(parts) == 3 && parts[2] == "progress" && r.Method == http.MethodPut {
			learningHandlers.RecordProgress(w, r)
			return
		}

		// /learning/{id}
		if len(parts) == 2 {
			switch r.Method {
			case http.MethodGet:
				learningHandlers.GetModule(w, r)
			case http.MethodPut:
				learningHandlers.UpdateModule(w, r)
			case http.MethodDelete:
				learningHandlers.DeleteModule(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		http.Error(w, "endpoint not found", http.StatusNotFound)
	})

	// WebSocket route: /ws/{chatID}
	mux.HandleFunc("/ws/", wsHandlers.HandleWebSocket)
}

func pathParts(r *http.Request) []string {
	return strings.Split(strings.Trim(r.URL.Path, "/"), "/")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
