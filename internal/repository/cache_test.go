package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmacia/internal/domain"
)

// requires Redis running on localhost:6379
const testRedisAddr = "localhost:6379"

func setupCachedCatalog(t *testing.T) (*CachedCatalog, *MemoryCatalog) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	prefix := "farmacia-test:" + t.Name() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	mem := NewMemoryCatalog(DemoProducts()...)
	return NewCachedCatalog(mem, client, prefix, time.Minute, nil), mem
}

func TestCachedCatalog_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	cached, mem := setupCachedCatalog(t)

	p, err := cached.GetProduct(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Vitamina C 1000mg", p.Name)

	// change the source behind the cache's back
	name := "Vitamina C (renomeada)"
	_, err = mem.UpdateProduct(ctx, "1", domain.ProductUpdate{Name: &name})
	require.NoError(t, err)

	p, err = cached.GetProduct(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Vitamina C 1000mg", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("45.90")))
}

func TestCachedCatalog_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	cached, _ := setupCachedCatalog(t)

	_, err := cached.GetProduct(ctx, "2")
	require.NoError(t, err)

	var stock int64 = 7
	_, err = cached.UpdateProduct(ctx, "2", domain.ProductUpdate{Stock: &stock})
	require.NoError(t, err)

	p, err := cached.GetProduct(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.Stock)

	require.NoError(t, cached.DeleteProduct(ctx, "2"))
	_, err = cached.GetProduct(ctx, "2")
	require.Error(t, err)
}
