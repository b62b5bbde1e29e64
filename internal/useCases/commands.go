package useCases

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/ports"
)

const (
	CommandPrefix = "!"

	ReplyWithdrawFormat = "Format salah. Contoh: !withdraw 100000"
	ReplyUnknownCommand = "Perintah tidak dikenal. Ketik !help untuk bantuan."
)

// Outcome: чем закончилась обработка входящего сообщения
type Outcome string

const (
	OutcomeIgnored          Outcome = "ignored"
	OutcomeHelp             Outcome = "help"
	OutcomeNotImplemented   Outcome = "not_implemented"
	OutcomeFormatError      Outcome = "format_error"
	OutcomeWithdrawalQueued Outcome = "withdrawal_queued"
	OutcomeUnknown          Outcome = "unknown"
)

// Replier отправляет текст на уже каноничный адрес
type Replier interface {
	SendText(ctx context.Context, to, text string) (string, error)
}

type CommandDispatcher struct {
	log         *slog.Logger
	replier     Replier
	renderer    Renderer
	withdrawals ports.WithdrawalQueue // nil: обработка вывода не подключена
	now         func() time.Time
}

func NewCommandDispatcher(
	log *slog.Logger,
	replier Replier,
	renderer Renderer,
	withdrawals ports.WithdrawalQueue,
) *CommandDispatcher {
	return &CommandDispatcher{
		log:         log.With("component", "commands"),
		replier:     replier,
		renderer:    renderer,
		withdrawals: withdrawals,
		now:         time.Now,
	}
}

// Dispatch разбирает "!команда арг1 арг2" и отвечает отправителю
func (d *CommandDispatcher) Dispatch(ctx context.Context, msg domain.InboundMessage) (Outcome, error) {
	text := strings.ToLower(msg.Body)
	if !strings.HasPrefix(text, CommandPrefix) {
		return OutcomeIgnored, nil
	}

	name, args := parseCommand(strings.TrimPrefix(text, CommandPrefix))
	d.log.Info("command received", "from", msg.Sender, "command", name, "args", len(args))

	switch name {
	case "help":
		body, err := d.renderer.Render(domain.TemplateCommandHelp, nil)
		if err != nil {
			return OutcomeHelp, err
		}
		return OutcomeHelp, d.reply(ctx, msg.Sender, body)

	case "status", "saldo":
		d.log.Info("command not implemented yet", "command", name, "from", msg.Sender)
		return OutcomeNotImplemented, nil

	case "withdraw":
		if len(args) != 1 || !isNumber(args[0]) {
			return OutcomeFormatError, d.reply(ctx, msg.Sender, ReplyWithdrawFormat)
		}
		return d.withdraw(ctx, msg.Sender, args[0])

	default:
		return OutcomeUnknown, d.reply(ctx, msg.Sender, ReplyUnknownCommand)
	}
}

func (d *CommandDispatcher) withdraw(ctx context.Context, sender, amount string) (Outcome, error) {
	if d.withdrawals == nil {
		d.log.Info("withdrawal processing not configured", "from", sender, "amount", amount)
		return OutcomeNotImplemented, nil
	}
	req := domain.WithdrawalRequest{Sender: sender, Amount: amount, RequestedAt: d.now()}
	if err := d.withdrawals.Enqueue(ctx, req); err != nil {
		return OutcomeWithdrawalQueued, err
	}
	d.log.Info("withdrawal request queued", "from", sender, "amount", amount)
	return OutcomeWithdrawalQueued, nil
}

func (d *CommandDispatcher) reply(ctx context.Context, to, text string) error {
	_, err := d.replier.SendText(ctx, to, text)
	return err
}

// parseCommand: имя идёт до первого пробельного символа, остальное аргументы
func parseCommand(s string) (string, []string) {
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, nil
	}
	return s[:idx], strings.Fields(s[idx:])
}

// isNumber: знак и величину суммы проверяет обработчик заявок
func isNumber(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}
