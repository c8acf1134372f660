package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/marketplace-service/internal/badges"
	"github.com/princekumarofficial/marketplace-service/internal/cache"
	"github.com/princekumarofficial/marketplace-service/internal/config"
	"github.com/princekumarofficial/marketplace-service/internal/events"
	"github.com/princekumarofficial/marketplace-service/internal/http/handlers/campaigns"
	"github.com/princekumarofficial/marketplace-service/internal/http/handlers/items"
	mediaHandlers "github.com/princekumarofficial/marketplace-service/internal/http/handlers/media"
	"github.com/princekumarofficial/marketplace-service/internal/http/handlers/users"
	wsHandlers "github.com/princekumarofficial/marketplace-service/internal/http/handlers/websocket"
	"github.com/princekumarofficial/marketplace-service/internal/http/middleware"
	"github.com/princekumarofficial/marketplace-service/internal/metrics"
	"github.com/princekumarofficial/marketplace-service/internal/services/media"
	"github.com/princekumarofficial/marketplace-service/internal/storage/postgres"
	"github.com/princekumarofficial/marketplace-service/internal/websocket"
)

func main() {
	// load config
	cfg := config.MustLoad()

	// database setup
	pg, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	slog.Info("Connected to Redis", slog.String("addr", cfg.Redis.Addr))

	store := cache.NewCacheService(pg, redisClient)

	mediaService, err := media.NewService(cfg.Storage, cfg.Media)
	if err != nil {
		log.Fatal("Failed to initialize media service:", err)
	}
	if err := mediaService.EnsureBucket(context.Background()); err != nil {
		// Tickets still presign locally; uploads fail until the bucket exists.
		slog.Warn("Upload bucket check failed", slog.String("error", err.Error()))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	m := metrics.New()
	badgeService := badges.NewService(store, events.NewEventPublisher(hub), m)

	rateLimits := middleware.NewRateLimitConfig(redisClient, cfg.RateLimit)
	rateLimits.Rejected = func(action string) {
		if action == middleware.ActionTickets || action == middleware.ActionTicketsByAddr {
			m.TicketFailed(mediaHandlers.ReasonRateLimited)
		}
	}
	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	authed := func(h http.HandlerFunc) http.Handler { return auth(h) }
	limited := func(action string, h http.HandlerFunc) http.Handler {
		return auth(rateLimits.RateLimitedHandler(action, middleware.AuthenticatedUser, h))
	}

	// setup router
	router := http.NewServeMux()

	router.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("marketplace-service"))
	})

	router.HandleFunc("POST /signup", users.SignUp(store))
	router.HandleFunc("POST /login", users.Login(store, cfg.JWTSecret))
	router.Handle("GET /me", authed(users.Me(store)))
	router.Handle("PATCH /me/profile", authed(users.UpdateProfile(store, badgeService)))
	router.Handle("GET /me/badges", authed(users.MyBadges(store)))

	router.Handle("POST /items", limited(middleware.ActionItems, items.PostItem(store, badgeService)))
	router.Handle("POST /items/{id}/share", authed(items.ShareItem(store, badgeService)))

	router.Handle("POST /campaigns", authed(campaigns.PostCampaign(store)))
	router.Handle("POST /campaigns/{id}/donations", limited(middleware.ActionDonations, campaigns.Donate(store, badgeService)))

	tickets := mediaHandlers.NewMediaHandlers(mediaService, m)
	router.Handle("GET /get-presigned-url", rateLimits.TicketHandler(tickets.GetPresignedURL()))

	router.HandleFunc("GET /ws", wsHandlers.WebSocketHandler(hub, cfg.JWTSecret))
	router.Handle("GET /metrics", m.Handler())

	if len(cfg.Admin.UserIDs) == 0 {
		slog.Warn("No admin users configured, /admin routes will refuse every caller")
	}
	adminOnly := middleware.AdminOnly(cfg.Admin.UserIDs)
	cache.RegisterAdminRoutes(router, redisClient, func(h http.Handler) http.Handler {
		return auth(adminOnly(h))
	})

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: router,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	stop()
	redisClient.Close()
	pg.Db.Close()
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
