package gateway

import (
	"eventix/internal/auth"

	"github.com/gin-gonic/gin"
)

// ServiceInstances maps logical service name to the base URLs of its
// running instances, the input configuration for NewBalancers.
type ServiceInstances map[string][]string

// NewBalancers builds one Balancer per entry in instances.
func NewBalancers(instances ServiceInstances) map[string]*Balancer {
	balancers := make(map[string]*Balancer, len(instances))
	for name, urls := range instances {
		ups := make([]Upstream, len(urls))
		for i, u := range urls {
			ups[i] = Upstream{Name: name, BaseURL: u}
		}
		balancers[name] = NewBalancer(ups)
	}
	return balancers
}

// DefaultRoutes mirrors the path-prefix routing table of the gateway
// this service fronts: auth and event browsing are public, booking and
// payment and the authenticated parts of user management require a
// valid access token, and admin event management additionally requires
// the ADMIN role.
func DefaultRoutes() []Route {
	return []Route{
		{PathPrefix: "/api/v1/auth", ServiceName: "user", RequireAuth: false},
		{PathPrefix: "/api/v1/users/profile", ServiceName: "user", RequireAuth: true},
		{PathPrefix: "/api/v1/users", ServiceName: "user", RequireAuth: false},
		{PathPrefix: "/api/v1/admin/events", ServiceName: "event", RequireAuth: true, RequireRoles: []string{auth.RoleAdmin}},
		{PathPrefix: "/api/v1/events", ServiceName: "event", RequireAuth: false},
		{PathPrefix: "/api/v1/bookings", ServiceName: "booking", RequireAuth: true},
		{PathPrefix: "/api/v1/payments", ServiceName: "payment", RequireAuth: true},
	}
}

// RegisterRoutes mounts the proxy as a catch-all under /api/v1 and a
// liveness endpoint that bypasses routing entirely.
func RegisterRoutes(r *gin.Engine, p *Proxy) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.NoRoute(p.Handler())
}
