package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/letusconnect/connect-gateway-go/internal/config"
	"github.com/letusconnect/connect-gateway-go/internal/domain/unread"
	appHTTP "github.com/letusconnect/connect-gateway-go/internal/handler/http"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/connect"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/cron"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/jwt"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/push"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/pubsub"
	chatlistService "github.com/letusconnect/connect-gateway-go/internal/service/chatlist"
	notificationService "github.com/letusconnect/connect-gateway-go/internal/service/notification"
	realtimeService "github.com/letusconnect/connect-gateway-go/internal/service/realtime"
	"github.com/letusconnect/connect-gateway-go/internal/service/session"
	unreadService "github.com/letusconnect/connect-gateway-go/internal/service/unread"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	apiClient := connect.NewClient(cfg.Connect)

	transport, err := pubsub.Connect(cfg.NATS.URL)
	if err != nil {
		log.Fatal("Failed to connect to NATS: ", err)
	}

	hub := push.NewHub()
	selectionRegistry := session.NewRegistry()
	chatlistSvc := chatlistService.NewService(apiClient)
	statsStore := notificationService.New(apiClient)

	// Completed fetch cycles are streamed to the user's open tabs
	onCountChange := func(userID string, state unread.State) {
		hub.Publish(userID, push.Event{
			UserID: userID,
			Event:  "unread-count",
			Data:   state,
		})
	}
	unreadSvc := unreadService.NewService(
		apiClient,
		unread.Options{
			MaxRetries: cfg.Unread.MaxRetries,
			RetryDelay: cfg.Unread.RetryDelay,
		},
		onCountChange,
		hub,
	)

	realtimeSvc := realtimeService.NewService(transport, chatlistSvc, selectionRegistry, hub)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	unreadHandler := appHTTP.NewUnreadHandler(unreadSvc)
	chatsHandler := appHTTP.NewChatsHandler(chatlistSvc)
	sessionHandler := appHTTP.NewSessionHandler(selectionRegistry)
	notificationHandler := appHTTP.NewNotificationHandler(
		statsStore,
		JWTService,
		hub,
		realtimeSvc,
		unreadSvc,
		chatlistSvc,
	)

	router := appHTTP.NewRouter(
		JWTService,
		unreadHandler,
		chatsHandler,
		sessionHandler,
		notificationHandler,
		cfg.App.FrontendURL,
	)

	// Periodic authoritative refresh reconciles optimistic decrements for
	// every user with an open stream
	scheduler := cron.NewScheduler()
	scheduler.AddJob("notification-stats-refresh", cfg.Stats.RefreshInterval, func(ctx context.Context) error {
		statsStore.RefreshAll(ctx, hub.ActiveUsers())
		return nil
	})
	scheduler.Start()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{
		Addr:    port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("Gateway running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Println("Shutdown error:", err)
	}

	scheduler.Stop()
	realtimeSvc.UnbindAll()
	unreadSvc.StopAll()
	transport.Close()
}
