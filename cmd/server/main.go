package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/stock"
	"storefront/internal/store"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var st store.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("Could not connect to redis (%s): %v", cfg.RedisAddr, err)
		}
		st = store.NewRedis(client)
		log.WithField("addr", cfg.RedisAddr).Info("Using Redis store")
	} else {
		st = store.NewMemory()
		log.Info("Using in-memory store")
	}

	authService := auth.NewService(st)
	if cfg.AdminPassword != "" {
		if _, err := st.GetUserByUsername(ctx, cfg.AdminUsername); errors.Is(err, store.ErrNotFound) {
			if _, _, err := authService.CreateUser(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
				log.Fatal("Failed to create admin identity: ", err)
			}
		}
	}

	if cfg.SeedDemoData {
		seedDemoCatalog(ctx, st)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.AdminWebhookURL != "" {
		notifier = notify.NewWebhook(cfg.AdminWebhookURL, api.ServiceName)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQP(cfg.AMQPURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: ", err)
		}
		defer p.Close()
		publisher = p
	}

	router := api.New(st, stock.NewManager(st), authService, notifier, publisher).Routes()

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("Storefront API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Could not listen: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}
	log.Info("Server stopped")
}

// seedDemoCatalog loads the demo items when the catalog is empty.
func seedDemoCatalog(ctx context.Context, st store.Store) {
	existing, err := st.ListItems(ctx)
	if err != nil || len(existing) > 0 {
		return
	}
	demo := []*models.Item{
		models.NewItem("Demo item 1", "This is a description for demo 1", 500, 20),
		models.NewItem("Demo item 2", "This is a description for demo 2", 700, 15),
		models.NewItem("Demo item 3", "This is a description for demo 3", 300, 18),
		models.NewItem("Demo item 4", "This is a description for demo 4", 400, 14),
		models.NewItem("Demo item 5", "This is a description for demo 5", 500, 30),
	}
	for _, item := range demo {
		if err := st.SaveItem(ctx, item); err != nil {
			log.Fatal("Failed to seed demo catalog: ", err)
		}
		metrics.InventoryLevel.WithLabelValues(item.ID).Set(float64(item.Stock))
	}
	log.WithField("items", len(demo)).Info("Demo catalog seeded")
}
