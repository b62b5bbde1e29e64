package ports

import (
	"context"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

// WithdrawalQueue передаёт заявку на вывод во внешний процесс обработки
type WithdrawalQueue interface {
	Enqueue(ctx context.Context, req domain.WithdrawalRequest) error
}
