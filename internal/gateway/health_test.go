package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventix/internal/gateway"
)

func TestHealthChecker_MarksDownOnFailure(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()

	bal := gateway.NewBalancer([]gateway.Upstream{{Name: "booking", BaseURL: down.URL}, {Name: "booking", BaseURL: up.URL}})
	hc := gateway.NewHealthChecker(map[string]*gateway.Balancer{"booking": bal}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	hc.Run(ctx)

	for i := 0; i < 2; i++ {
		u, ok := bal.Next()
		require.True(t, ok)
		require.Equal(t, up.URL, u.BaseURL)
	}
}

func TestHealthChecker_MarksUpOnSuccess(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	bal := gateway.NewBalancer([]gateway.Upstream{{Name: "booking", BaseURL: up.URL}, {Name: "booking", BaseURL: down.URL}})
	bal.SetHealthy(up.URL, false)
	hc := gateway.NewHealthChecker(map[string]*gateway.Balancer{"booking": bal}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	hc.Run(ctx)

	for i := 0; i < 2; i++ {
		u, ok := bal.Next()
		require.True(t, ok)
		require.Equal(t, up.URL, u.BaseURL)
	}
}
