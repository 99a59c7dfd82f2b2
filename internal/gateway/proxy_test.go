package gateway_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventix/internal/auth"
	"eventix/internal/gateway"
	"eventix/pkg/config"
)

func testSecurity() *config.Security {
	return &config.Security{JWTAccessSecret: "test-secret", JWTRefreshSecret: "test-secret-2", AccessTTLMinute: 15, RefreshTTLMinute: 60}
}

func newTestProxy(t *testing.T, routes []gateway.Route, upstream string, security *config.Security) *gateway.Proxy {
	t.Helper()
	balancers := map[string]*gateway.Balancer{
		"event": gateway.NewBalancer([]gateway.Upstream{{Name: "event", BaseURL: upstream}}),
	}
	breakers := gateway.NewCircuitBreakers([]string{"event"}, zap.NewNop())
	rl := gateway.NewRateLimiter(newTestRedis(t), zap.NewNop())
	return gateway.NewProxy(routes, balancers, breakers, rl, security, zap.NewNop())
}

func TestProxy_ForwardsPublicRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("events-ok"))
	}))
	defer upstream.Close()

	proxy := newTestProxy(t, []gateway.Route{{PathPrefix: "/api/v1/events", ServiceName: "event", RequireAuth: false}}, upstream.URL, testSecurity())

	r := gin.New()
	r.NoRoute(proxy.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "events-ok", rec.Body.String())
}

func TestProxy_RejectsUnauthenticatedProtectedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	proxy := newTestProxy(t, []gateway.Route{{PathPrefix: "/api/v1/events", ServiceName: "event", RequireAuth: true}}, upstream.URL, testSecurity())

	r := gin.New()
	r.NoRoute(proxy.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProxy_AllowsAuthenticatedRequestAndForwardsUserHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var gotUserID, gotRole string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Header.Get("X-User-ID")
		gotRole = r.Header.Get("X-User-Role")
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	security := testSecurity()
	proxy := newTestProxy(t, []gateway.Route{{PathPrefix: "/api/v1/events", ServiceName: "event", RequireAuth: true}}, upstream.URL, security)

	tokens, err := auth.GenerateTokens(security, "user-1", auth.RoleUser)
	require.NoError(t, err)

	r := gin.New()
	r.NoRoute(proxy.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", gotUserID)
	require.Equal(t, auth.RoleUser, gotRole)
}

func TestProxy_RejectsWrongRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	security := testSecurity()
	proxy := newTestProxy(t, []gateway.Route{
		{PathPrefix: "/api/v1/events/admin", ServiceName: "event", RequireAuth: true, RequireRoles: []string{auth.RoleAdmin}},
	}, upstream.URL, security)

	tokens, err := auth.GenerateTokens(security, "user-1", auth.RoleUser)
	require.NoError(t, err)

	r := gin.New()
	r.NoRoute(proxy.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProxy_NoRouteMatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	proxy := newTestProxy(t, []gateway.Route{{PathPrefix: "/api/v1/events", ServiceName: "event"}}, "http://unused", testSecurity())

	r := gin.New()
	r.NoRoute(proxy.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
