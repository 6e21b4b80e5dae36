package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardiansetya/go-shop-admin/internal/catalog"
	"github.com/ardiansetya/go-shop-admin/internal/config"
	"github.com/ardiansetya/go-shop-admin/internal/httpx"
	kafkax "github.com/ardiansetya/go-shop-admin/internal/kafka"
	"github.com/ardiansetya/go-shop-admin/internal/orders"
	"github.com/ardiansetya/go-shop-admin/internal/postgres"
	"github.com/ardiansetya/go-shop-admin/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	pStatus.Start(ctx)

	// Engine wiring
	ledger := &catalog.PG{DB: db}
	store := &orders.PGStore{DB: db}
	coord := &orders.Coordinator{Ledger: ledger}
	placer := &orders.Placement{Catalog: ledger, Coord: coord, Store: store}
	lifecycle := &orders.Lifecycle{Store: store}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Placer:        placer,
		Lifecycle:     lifecycle,
		Store:         store,
		Placed:        pPlaced,
		StatusChanged: pStatus,
		Redis:         rdb,
		Service:       cfg.ServiceName,
	}
	oh.Register(router)
	ph := &httpx.ProductsHandler{Catalog: ledger}
	ph.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close()
	pStatus.Close()
	cancel()
	pPlaced.WaitClosed()
	pStatus.WaitClosed()
}
