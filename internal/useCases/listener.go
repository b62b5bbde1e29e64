package useCases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

// Listener обрабатывает каждое входящее сообщение в отдельной горутине.
// Ошибка или паника при обработке одного сообщения не влияет на следующие.
type Listener struct {
	log      *slog.Logger
	commands *CommandDispatcher
	ctx      context.Context
	wg       sync.WaitGroup
}

func NewListener(ctx context.Context, log *slog.Logger, commands *CommandDispatcher) *Listener {
	return &Listener{
		log:      log.With("component", "listener"),
		commands: commands,
		ctx:      ctx,
	}
}

// Handle не блокирует: подходит для вызова прямо из цикла событий транспорта
func (l *Listener) Handle(msg domain.InboundMessage) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.process(msg); err != nil {
			l.log.Error("Error handling incoming message", "from", msg.Sender, "error", err)
		}
	}()
}

// Wait ждёт завершения всех запущенных обработчиков
func (l *Listener) Wait() {
	l.wg.Wait()
}

func (l *Listener) process(msg domain.InboundMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	l.log.Info("Received message", "from", msg.Sender, "text", msg.Body)

	outcome, err := l.commands.Dispatch(l.ctx, msg)
	if err != nil {
		return fmt.Errorf("command outcome %s: %w", outcome, err)
	}
	if outcome != OutcomeIgnored {
		l.log.Debug("command handled", "from", msg.Sender, "outcome", outcome)
	}
	return nil
}
