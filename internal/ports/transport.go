package ports

import (
	"context"
	"log/slog"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

// Transport: канал до чат-сети. Реализуется адаптерами (TDLib и т.д.).
//
// События отдаются через Events() по одному и по порядку. Канал событий
// транспорт не закрывает: подписчик перестаёт читать сам, а Close
// освобождает горутины транспорта, заблокированные на отправке события.
type Transport interface {
	// Events возвращает поток событий жизненного цикла и входящих сообщений
	Events() <-chan domain.Event
	// Start запускает handshake и сразу возвращает управление
	Start(ctx context.Context) error
	// SendText отправляет текст на каноничный адрес, возвращает id сообщения
	SendText(ctx context.Context, to string, text string) (string, error)
	Close()
}

// TransportFactory создаёт новый экземпляр транспорта при каждой (ре)инициализации
type TransportFactory func(log *slog.Logger) (Transport, error)
