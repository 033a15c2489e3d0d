package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/d60-Lab/delivery-admin/config"
	"github.com/d60-Lab/delivery-admin/internal/client"
)

// 测量订单与库存后端读接口的延迟：串行 REPEAT 次，再以 CONCURRENCY 并发各跑一轮
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	orders := client.NewOrderClient(cfg.Orders.BaseURL, client.OrderPaths{List: cfg.Orders.ListPath, Ship: cfg.Orders.ShipPath}, httpClient)
	inventory := client.NewInventoryClient(cfg.Inventory.BaseURL, client.InventoryPaths{
		List: cfg.Inventory.ListPath, Add: cfg.Inventory.AddPath, Update: cfg.Inventory.UpdatePath,
	}, httpClient)

	repeat := envInt("REPEAT", 20)
	concurrency := envInt("CONCURRENCY", 8)
	ctx := context.Background()

	calls := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"orders.list", func(ctx context.Context) error { _, err := orders.ListOrders(ctx); return err }},
		{"inventory.list", func(ctx context.Context) error { _, err := inventory.ListProducts(ctx); return err }},
	}

	fmt.Printf("REPEAT=%d CONCURRENCY=%d\n", repeat, concurrency)
	for _, call := range calls {
		serial, failed := make([]time.Duration, 0, repeat), 0
		for i := 0; i < repeat; i++ {
			st := time.Now()
			if err := call.fn(ctx); err != nil {
				failed++
				continue
			}
			serial = append(serial, time.Since(st))
		}

		var mu sync.Mutex
		var wg sync.WaitGroup
		parallel := make([]time.Duration, 0, repeat)
		sem := make(chan struct{}, concurrency)
		wall := time.Now()
		for i := 0; i < repeat; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer func() { <-sem; wg.Done() }()
				st := time.Now()
				if err := call.fn(ctx); err != nil {
					return
				}
				mu.Lock()
				parallel = append(parallel, time.Since(st))
				mu.Unlock()
			}()
		}
		wg.Wait()

		fmt.Printf("%s serial: ok=%d failed=%d avg=%v p95=%v p99=%v\n",
			call.name, len(serial), failed, avg(serial), pct(serial, 0.95), pct(serial, 0.99))
		fmt.Printf("%s parallel: ok=%d wall=%v p95=%v\n",
			call.name, len(parallel), time.Since(wall), pct(parallel, 0.95))
	}
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range vs {
		sum += d
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(float64(len(xs)) * p)
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}
