package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"eventix/internal/auth"
	"eventix/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// hopByHopHeaders are stripped before forwarding a request upstream or a
// response back to the client, per RFC 7230 6.1.
var hopByHopHeaders = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
	"Te", "Trailers", "Transfer-Encoding", "Upgrade",
}

// Route maps a path prefix to the logical backend service that serves
// it, optionally requiring authentication and/or a specific role.
type Route struct {
	PathPrefix   string
	ServiceName  string
	RequireAuth  bool
	RequireRoles []string
}

// Proxy forwards requests to balanced, circuit-broken upstream services
// selected by longest-prefix route match, enforcing rate limiting and
// local JWT validation before any request leaves the gateway.
type Proxy struct {
	routes      []Route
	balancers   map[string]*Balancer
	breakers    *CircuitBreakers
	rateLimiter *RateLimiter
	security    *config.Security
	logger      *zap.Logger
	client      *http.Client
}

// NewProxy builds a Proxy over routes, routing to the given per-service
// balancers via breakers, enforcing rateLimiter on every request.
func NewProxy(routes []Route, balancers map[string]*Balancer, breakers *CircuitBreakers, rateLimiter *RateLimiter, security *config.Security, logger *zap.Logger) *Proxy {
	return &Proxy{
		routes:      routes,
		balancers:   balancers,
		breakers:    breakers,
		rateLimiter: rateLimiter,
		security:    security,
		logger:      logger,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// findRoute returns the route whose PathPrefix is the longest match for
// path, or false if nothing matches.
func (p *Proxy) findRoute(path string) (Route, bool) {
	best := Route{}
	found := false
	for _, r := range p.routes {
		if strings.HasPrefix(path, r.PathPrefix) {
			if !found || len(r.PathPrefix) > len(best.PathPrefix) {
				best = r
				found = true
			}
		}
	}
	return best, found
}

// Handler returns a gin.HandlerFunc that authenticates (when required),
// rate-limits, and reverse-proxies every request to the matched route's
// backend service.
func (p *Proxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		route, ok := p.findRoute(c.Request.URL.Path)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no route for path"})
			return
		}

		rateKey := c.ClientIP()
		var userID, role string
		if route.RequireAuth {
			claims, err := p.authenticate(c)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
				return
			}
			userID, role = claims.UserID, claims.Role
			rateKey = userID
			if len(route.RequireRoles) > 0 && !containsRole(route.RequireRoles, role) {
				c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		if !p.rateLimiter.Allow(c.Request.Context(), rateKey) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		bal, ok := p.balancers[route.ServiceName]
		if !ok {
			c.JSON(http.StatusBadGateway, gin.H{"error": "no upstream configured"})
			return
		}
		upstream, ok := bal.Next()
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no upstream instances"})
			return
		}

		target, err := url.Parse(upstream.BaseURL)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "bad upstream url"})
			return
		}

		start := time.Now()
		var proxyErr error
		_, execErr := p.breakers.Execute(route.ServiceName, func() (interface{}, error) {
			rp := httputil.NewSingleHostReverseProxy(target)
			rp.Director = func(req *http.Request) {
				req.URL.Scheme = target.Scheme
				req.URL.Host = target.Host
				req.Host = target.Host
				stripHopByHop(req.Header)
				if userID != "" {
					req.Header.Set("X-User-ID", userID)
					req.Header.Set("X-User-Role", role)
				}
			}
			rp.ModifyResponse = func(resp *http.Response) error {
				stripHopByHop(resp.Header)
				resp.Header.Set("X-Process-Time", time.Since(start).String())
				return nil
			}
			rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
				proxyErr = err
				p.logger.Warn("upstream proxy error",
					zap.String("service", route.ServiceName), zap.String("base_url", upstream.BaseURL), zap.Error(err))
				w.WriteHeader(http.StatusBadGateway)
			}
			rp.ServeHTTP(c.Writer, c.Request)
			return nil, proxyErr
		})
		if execErr != nil && execErr != proxyErr {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upstream unavailable: circuit open"})
			return
		}
	}
}

func (p *Proxy) authenticate(c *gin.Context) (*auth.AccessClaims, error) {
	ah := c.GetHeader("Authorization")
	token := strings.TrimPrefix(ah, "Bearer ")
	return auth.ValidateAccessToken(p.security, token)
}

func stripHopByHop(h http.Header) {
	for _, header := range hopByHopHeaders {
		h.Del(header)
	}
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
