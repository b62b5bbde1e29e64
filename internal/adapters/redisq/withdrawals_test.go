package redisq

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestWithdrawalStream_Enqueue(t *testing.T) {
	_, rdb := newClient(t)
	q := NewWithdrawalStream(rdb, "")

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, q.Enqueue(context.Background(), domain.WithdrawalRequest{
		Sender: "6281234@c.us", Amount: "100000", RequestedAt: at,
	}))

	msgs, err := rdb.XRange(context.Background(), DefaultStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "6281234@c.us", msgs[0].Values["sender"])
	assert.Equal(t, "100000", msgs[0].Values["amount"])
	assert.Equal(t, "2024-05-01T10:00:00Z", msgs[0].Values["requested_at"])
}

func TestWithdrawalStream_RedisDown(t *testing.T) {
	mr, rdb := newClient(t)
	mr.Close()

	err := NewWithdrawalStream(rdb, "w").Enqueue(context.Background(), domain.WithdrawalRequest{Amount: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xadd w")
}
