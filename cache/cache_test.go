package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := newRedisCache([]string{mr.Addr()})
	assert.NoError(t, err)
	return c
}

func TestCacheSetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	type payload struct {
		OrderID string `json:"order_id"`
		Qty     int    `json:"qty"`
	}

	err := c.Set(ctx, "order:ord_1", &payload{OrderID: "ord_1", Qty: 2}, time.Minute)
	assert.NoError(t, err)

	var got payload
	err = c.Get(ctx, "order:ord_1", &got)
	assert.NoError(t, err)
	assert.Equal(t, "ord_1", got.OrderID)
	assert.Equal(t, 2, got.Qty)

	err = c.Delete(ctx, "order:ord_1")
	assert.NoError(t, err)
}

func TestCacheMissIsNotAnError(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	var got map[string]interface{}
	err := c.Get(ctx, "order:missing", &got)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
