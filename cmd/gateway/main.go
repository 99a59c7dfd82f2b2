// Command gateway runs the API gateway: the single public entry point
// that load-balances, rate-limits, circuit-breaks and authenticates
// requests before forwarding them to the user, event, booking and
// payment services.
package main

import (
	"context"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eventix/internal/gateway"
	"eventix/pkg/config"
	"eventix/pkg/httpserver"
	"eventix/pkg/logger"
)

func main() {
	cfg := config.Load(config.DefaultConfigFile)

	log := logger.New("gateway", cfg.App.Env, cfg.Logging.Dir)
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})

	instances := gateway.ServiceInstances{
		"user":    splitAddrs(envOr("USER_SERVICE_URLS", "http://localhost:8081")),
		"event":   splitAddrs(envOr("EVENT_SERVICE_URLS", "http://localhost:8082")),
		"booking": splitAddrs(envOr("BOOKING_SERVICE_URLS", "http://localhost:8083")),
		"payment": splitAddrs(envOr("PAYMENT_SERVICE_URLS", "http://localhost:8084")),
	}
	balancers := gateway.NewBalancers(instances)

	serviceNames := make([]string, 0, len(balancers))
	for name := range balancers {
		serviceNames = append(serviceNames, name)
	}
	breakers := gateway.NewCircuitBreakers(serviceNames, log)
	rateLimiter := gateway.NewRateLimiter(redisClient, log)
	proxy := gateway.NewProxy(gateway.DefaultRoutes(), balancers, breakers, rateLimiter, &cfg.Security, log)

	healthChecker := gateway.NewHealthChecker(balancers, log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go healthChecker.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	gateway.RegisterRoutes(r, proxy)

	httpserver.ServeGraceful(cfg.Server.HTTPAddr, r)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitAddrs(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
