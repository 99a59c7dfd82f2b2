package gateway

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthChecker actively probes every instance of every registered
// balancer on a fixed period, flipping SetHealthy based on a successful
// GET /health with no hysteresis: one failed probe marks an instance
// down, one successful probe marks it back up.
type HealthChecker struct {
	balancers map[string]*Balancer
	client    *http.Client
	period    time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// NewHealthChecker builds a checker over the given named balancers with
// a 30s sweep period and a 5s per-probe timeout.
func NewHealthChecker(balancers map[string]*Balancer, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		balancers: balancers,
		client:    &http.Client{Timeout: 5 * time.Second},
		period:    30 * time.Second,
		timeout:   5 * time.Second,
		logger:    logger,
	}
}

// Run sweeps every instance every period until ctx is cancelled.
func (h *HealthChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(h.period)
	defer ticker.Stop()
	h.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sweep(ctx)
		}
	}
}

func (h *HealthChecker) sweep(ctx context.Context) {
	for name, bal := range h.balancers {
		for _, u := range bal.Instances() {
			ok := h.probe(ctx, u.BaseURL)
			bal.SetHealthy(u.BaseURL, ok)
			if !ok {
				h.logger.Warn("upstream unhealthy", zap.String("service", name), zap.String("base_url", u.BaseURL))
			}
		}
	}
}

func (h *HealthChecker) probe(ctx context.Context, baseURL string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
