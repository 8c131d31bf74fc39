package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/jefree-app/backend/internal/config"
	"github.com/jefree-app/backend/internal/conversation"
	"github.com/jefree-app/backend/internal/handler"
	"github.com/jefree-app/backend/internal/identity"
	"github.com/jefree-app/backend/internal/model/profile"
	"github.com/jefree-app/backend/internal/quota"
	"github.com/jefree-app/backend/internal/service/ai"
	"github.com/jefree-app/backend/internal/service/chat"
	"github.com/jefree-app/backend/internal/service/email"
	"github.com/jefree-app/backend/internal/service/export"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if !cfg.Auth.Enabled() {
		log.Fatal("AUTH_JWT_SECRET is required to verify caller sessions")
	}
	verifier := identity.NewJWTVerifier(cfg.Auth.JWTSecret)

	quotas := newQuotaStore(ctx, cfg.Redis)
	history := conversation.NewLog(conversation.DefaultCapacity)
	profiles := profile.NewMemoryStore()

	// Initialize the planner assistant
	var chatSvc *chat.Service
	if cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without assistant functionality - check the Ark model environment variables")
		} else {
			chatSvc = chat.NewService(aiSvc, quotas, history, profiles)
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("model credentials not configured, skipping assistant initialization")
	}

	exportSvc := export.NewService(quotas, nil)

	var emailSvc *email.Service
	if cfg.Email.Enabled() {
		emailSvc = email.NewService(email.NewResendClient(cfg.Email.APIKey), cfg.Email.From, cfg.Email.Support)
		log.Println("contact mail enabled")
	} else {
		log.Println("RESEND_API_KEY not set, contact form disabled")
	}

	router := handler.NewRouter(verifier, chatSvc, exportSvc, emailSvc, quotas, profiles)

	startServer(ctx, cfg.Server, router)
}

// newQuotaStore selects the quota backend: Redis when configured and
// reachable, otherwise in-process counters.
func newQuotaStore(ctx context.Context, cfg config.RedisConfig) quota.Store {
	if !cfg.Enabled() {
		log.Println("Redis not configured, quota counters stay in process memory")
		return quota.NewMemoryStore(quota.DefaultLimits())
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("warning: Redis unreachable at %s: %v", cfg.Addr, err)
		log.Println("falling back to in-memory quota counters")
		return quota.NewMemoryStore(quota.DefaultLimits())
	}

	log.Printf("quota counters backed by Redis at %s", cfg.Addr)
	return quota.NewRedisStore(client, quota.DefaultLimits())
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Jefree backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
