package redis

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stacksevents/internal/platform/config"
)

func TestNew_DisabledWithoutURL(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "://nope"})
	assert.ErrorContains(t, err, "parse REDIS_URL")
}

func TestApplyPool_KeepsDefaultsForZeroValues(t *testing.T) {
	opts := &goredis.Options{PoolSize: 7, DialTimeout: time.Second}
	applyPool(opts, config.RedisConfig{ReadTimeout: 2 * time.Second})

	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
}

func TestRegisterPoolMetrics(t *testing.T) {
	c := &Client{Client: goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})}
	defer c.Client.Close()
	reg := prometheus.NewRegistry()
	c.RegisterPoolMetrics(reg)

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"redis_pool_total_connections",
		"redis_pool_idle_connections",
		"redis_pool_timeouts_total",
	}, names)
}
