// Package redisq публикует заявки на вывод в Redis Stream.
package redisq

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/ports"
)

const DefaultStream = "withdrawals:requests"

var _ ports.WithdrawalQueue = (*WithdrawalStream)(nil)

// WithdrawalStream реализует ports.WithdrawalQueue через XADD
type WithdrawalStream struct {
	rdb    redis.Cmdable
	stream string
	maxLen int64
}

func NewWithdrawalStream(rdb redis.Cmdable, stream string) *WithdrawalStream {
	if stream == "" {
		stream = DefaultStream
	}
	return &WithdrawalStream{rdb: rdb, stream: stream, maxLen: 10000}
}

func (q *WithdrawalStream) Enqueue(ctx context.Context, req domain.WithdrawalRequest) error {
	_, err := q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]any{
			"sender":       req.Sender,
			"amount":       req.Amount,
			"requested_at": req.RequestedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", q.stream, err)
	}
	return nil
}
