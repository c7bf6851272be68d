package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"notification-service/internal/claims"
	"notification-service/internal/config"
	"notification-service/internal/consumer"
	hrest "notification-service/internal/handler/http"
	wshandler "notification-service/internal/handler/ws"
	"notification-service/internal/middleware"
	"notification-service/internal/repository"
	"notification-service/internal/router"
	"notification-service/internal/usecase"
	"notification-service/pkg/jwtutil"
	ws "notification-service/pkg/notifier/ws"
	"notification-service/pkg/push"
)

func NewServer(ctx context.Context, cfg config.AppConfig) *http.Server {
	// --- DB connection ---
	dbpool, err := cfg.ConnectDB(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := repository.EnsureSchema(ctx, dbpool); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	// --- Init repos ---
	userRepo := repository.NewUserRepository(dbpool)
	notifRepo := repository.NewNotificationRepository(dbpool)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	claimsStore := claims.NewRedisStore(rdb)

	// --- Auth middleware ---
	verifier := jwtutil.NewVerifier(jwtutil.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	auth := middleware.NewAuthMiddleware(verifier)

	// --- WS manager and handler ---
	wsManager := ws.NewManager()
	go wsManager.Heartbeat(30 * time.Second)
	wsHandler := wshandler.NewWSHandler(wsManager)

	// --- Push transport ---
	fcm := push.NewFCMClient(cfg.FCMEndpoint, cfg.FCMServerKey)

	// --- Usecases ---
	fanoutUC := usecase.NewFanoutUsecase(userRepo, notifRepo, fcm, wsManager)
	roleUC := usecase.NewRoleUsecase(userRepo, claimsStore)
	queryUC := usecase.NewNotificationQueryUsecase(notifRepo, userRepo)

	// --- Change-event consumer ---
	cons, err := consumer.New(cfg.AmqpURL, cfg.AmqpExchange, cfg.AmqpQueue, fanoutUC)
	if err != nil {
		log.Fatalf("failed to start change-event consumer: %v", err)
	}
	go func() {
		if err := cons.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("⚠️ change-event consumer stopped: %v", err)
		}
		cons.Close()
	}()

	// --- Handlers ---
	restHandler := hrest.NewNotificationHandler(queryUC)
	roleHandler := hrest.NewRoleHandler(roleUC)

	// --- HTTP routes ---
	r := chi.NewRouter()
	router.SetupRoutes(r, restHandler, roleHandler, wsHandler, auth, rdb)

	// --- HTTP server ---
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
}
