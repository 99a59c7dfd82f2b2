package gateway_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"eventix/internal/gateway"
)

func TestBalancer_RoundRobin(t *testing.T) {
	b := gateway.NewBalancer([]gateway.Upstream{
		{Name: "booking", BaseURL: "http://a"},
		{Name: "booking", BaseURL: "http://b"},
	})

	seen := map[string]int{}
	for i := 0; i < 4; i++ {
		u, ok := b.Next()
		require.True(t, ok)
		seen[u.BaseURL]++
	}
	require.Equal(t, 2, seen["http://a"])
	require.Equal(t, 2, seen["http://b"])
}

func TestBalancer_SkipsUnhealthy(t *testing.T) {
	b := gateway.NewBalancer([]gateway.Upstream{
		{Name: "booking", BaseURL: "http://a"},
		{Name: "booking", BaseURL: "http://b"},
	})
	b.SetHealthy("http://a", false)

	for i := 0; i < 4; i++ {
		u, ok := b.Next()
		require.True(t, ok)
		require.Equal(t, "http://b", u.BaseURL)
	}
}

func TestBalancer_FailsOpenWhenAllUnhealthy(t *testing.T) {
	b := gateway.NewBalancer([]gateway.Upstream{
		{Name: "booking", BaseURL: "http://a"},
		{Name: "booking", BaseURL: "http://b"},
	})
	b.SetHealthy("http://a", false)
	b.SetHealthy("http://b", false)

	u, ok := b.Next()
	require.True(t, ok)
	require.NotEmpty(t, u.BaseURL)
}

func TestBalancer_NoInstances(t *testing.T) {
	b := gateway.NewBalancer(nil)
	_, ok := b.Next()
	require.False(t, ok)
}
