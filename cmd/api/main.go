package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovenlight/sms-dispatch/internal/cache/redis"
	"github.com/ovenlight/sms-dispatch/internal/config"
	"github.com/ovenlight/sms-dispatch/internal/db/gormdb"
	"github.com/ovenlight/sms-dispatch/internal/gateway"
	"github.com/ovenlight/sms-dispatch/internal/handler"
	"github.com/ovenlight/sms-dispatch/internal/middleware"
	convRepo "github.com/ovenlight/sms-dispatch/internal/repository/gorm/conversation"
	custRepo "github.com/ovenlight/sms-dispatch/internal/repository/gorm/customer"
	mesgRepo "github.com/ovenlight/sms-dispatch/internal/repository/gorm/message"
	optRepo "github.com/ovenlight/sms-dispatch/internal/repository/gorm/optout"
	routes "github.com/ovenlight/sms-dispatch/internal/router"
	"github.com/ovenlight/sms-dispatch/internal/scheduler"
	"github.com/ovenlight/sms-dispatch/internal/server"
	"github.com/ovenlight/sms-dispatch/internal/service"
)

func main() {
	// Base context for the whole application lifetime.
	rootCtx := context.Background()

	// Load configuration from environment/.env.
	cfg := config.New()

	// Init cache.
	cache := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cache.Ping(rootCtx); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	// Init DB.
	db, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}

	// Init carrier gateway client.
	gw := gateway.NewRESTClient(cfg.Gateway.BaseURL, cfg.Gateway.AccountSID, cfg.Gateway.AuthToken)
	if err := gw.Health(rootCtx); err != nil {
		log.Printf("[Main] Gateway health check failed (continuing): %v", err)
	}

	// Repositories.
	messages := mesgRepo.NewRepository(db)
	conversations := convRepo.NewRepository(db)
	customers := custRepo.NewRepository(db)
	optOuts := optRepo.NewRepository(db)

	// Services.
	compliance := service.NewComplianceFilter(optOuts, cache)
	resolver := service.NewConversationResolver(conversations, customers)
	sendSvc := service.NewSendService(messages, gw, compliance, resolver, cfg.Gateway.FromNumber)
	reconcileSvc := service.NewReconcilerService(
		messages,
		gw,
		cache,
		cfg.Reconciler.MaxChecks,
		cfg.Reconciler.CallPause,
	)

	// Optional in-process reconcile cadence; stays stopped until started
	// via the control endpoint.
	cron := scheduler.New(reconcileSvc, cfg.Scheduler.Interval, cfg.Scheduler.BatchTimeout)

	// Handlers & routing.
	homeHandler := handler.NewHomeHandler(cache, gw)
	messageHandler := handler.NewMessageHandler(sendSvc, reconcileSvc, cron)

	deps := routes.AppDeps{
		Home:         homeHandler,
		Message:      messageHandler,
		RequireAdmin: middleware.RequireAdmin(cfg.Auth.JWTSecret),
	}

	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	srv := server.New(addr, deps)

	// Create a context that is cancelled on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("HTTP server listening on %s", addr)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Block until we receive a shutdown signal.
	<-ctx.Done()
	log.Println("[Main] Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop the scheduler (waits for an in-flight pass to finish or time out).
	log.Println("[Main] Stopping scheduler...")
	if err := cron.Stop(); err != nil {
		log.Printf("[Main] Scheduler stop failed: %v", err)
	}

	log.Println("[Main] Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] HTTP server graceful shutdown failed: %v", err)
	} else {
		log.Println("[Main] HTTP server stopped.")
	}

	log.Println("[Main] Shutdown complete.")
}
