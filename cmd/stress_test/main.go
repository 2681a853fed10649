package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/glam-abaya/cartstore/internal/adapter/storage"
	"github.com/glam-abaya/cartstore/internal/config"
	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/core/service"
)

const (
	totalRequests = 50
	queueSize     = 100
	workerCount   = 4
	cartTTL       = 10 * time.Minute
)

func main() {
	ctx := context.Background()

	// REDIS_ADDR and ANALYTICS_SINK come from the same settings as the server.
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	sink, err := storage.NewAnalyticsBackend(ctx, cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("failed to open analytics sink: %v", err)
	}
	defer sink.Close()

	sessionID := uuid.NewString()
	slotKey := service.SlotKey(sessionID)
	defer rdb.Del(ctx, slotKey)

	product := domain.Product{
		ID:         "stress-abaya",
		Name:       "Stress Abaya",
		Price:      decimal.NewFromInt(150),
		FinalPrice: decimal.RequireFromString("129.99"),
	}

	counter, counted := sink.(storage.EventCounter)
	eventsBefore := 0
	if counted {
		if eventsBefore, err = counter.CountEvents(ctx, product.ID, domain.EventTypeAddToCart); err != nil {
			log.Fatalf("failed to count analytics events: %v", err)
		}
	}

	slots := storage.NewRedisAdapter(rdb, cartTTL)
	dispatcher := service.NewAnalyticsDispatcher(sink, queueSize, zap.NewNop())
	dispatcher.Start(workerCount)

	carts := service.NewRegistry(slots, service.WithEmitter(dispatcher))

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store, err := carts.Get(ctx, sessionID)
			if err != nil {
				log.Printf("failed to get cart: %v", err)
				return
			}
			store.AddItem(ctx, product, 1, "M")
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)
	dispatcher.Close()

	// A fresh registry reads the slot back from Redis.
	reloaded, err := service.NewRegistry(slots).Get(ctx, sessionID)
	if err != nil {
		log.Fatalf("failed to reload cart: %v", err)
	}
	items := reloaded.Items()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Session:          %s\n", sessionID)
	fmt.Printf("Analytics Sink:   %s\n", cfg.AnalyticsSink)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Lines:            %d\n", len(items))
	fmt.Printf("Total Count:      %d\n", reloaded.TotalCount())
	fmt.Printf("Total Value:      %s\n", reloaded.TotalValue().StringFixed(2))
	fmt.Printf("Pending Events:   %d\n", dispatcher.Pending())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if len(items) == 1 && items[0].Quantity == totalRequests {
		fmt.Printf("PASS: %d concurrent adds merged into one line\n", totalRequests)
	} else {
		fmt.Printf("FAIL: Expected 1 line with quantity %d, got %d lines / count %d\n",
			totalRequests, len(items), reloaded.TotalCount())
	}

	want := product.FinalPrice.Mul(decimal.NewFromInt(totalRequests))
	if reloaded.TotalValue().Equal(want) {
		fmt.Printf("PASS: Total value %s\n", want.StringFixed(2))
	} else {
		fmt.Printf("FAIL: Expected total %s, got %s\n", want.StringFixed(2), reloaded.TotalValue().StringFixed(2))
	}

	if !counted {
		return
	}
	eventsAfter, err := counter.CountEvents(ctx, product.ID, domain.EventTypeAddToCart)
	if err != nil {
		fmt.Printf("FAIL: Could not count analytics events: %v\n", err)
		return
	}
	if recorded := eventsAfter - eventsBefore; recorded == totalRequests {
		fmt.Printf("PASS: %d add_to_cart events recorded\n", recorded)
	} else {
		fmt.Printf("FAIL: Expected %d add_to_cart events, got %d\n", totalRequests, recorded)
	}
}
