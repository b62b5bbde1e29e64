package useCases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/phone"
)

// TimestampLayout: как id-ID локаль печатает дату и время
const TimestampLayout = "02/01/2006, 15.04.05"

// Session: то, что DispatchService нужно от SessionController
type Session interface {
	IsReady() bool
	SendText(ctx context.Context, to, text string) (string, error)
}

type Renderer interface {
	Render(templateID string, data map[string]any) (string, error)
}

type DispatchService struct {
	log      *slog.Logger
	session  Session
	renderer Renderer
	loc      *time.Location
	now      func() time.Time
}

func NewDispatchService(log *slog.Logger, session Session, renderer Renderer, loc *time.Location) *DispatchService {
	if loc == nil {
		loc = time.Local
	}
	return &DispatchService{
		log:      log.With("component", "dispatch"),
		session:  session,
		renderer: renderer,
		loc:      loc,
		now:      time.Now,
	}
}

// Send рендерит шаблон и отправляет его на нормализованный номер.
// Ошибку транспорта не ретраит: это забота вызывающего.
func (s *DispatchService) Send(ctx context.Context, recipientRaw, templateID string, data map[string]any) (domain.DeliveryHandle, error) {
	if !s.session.IsReady() {
		s.log.Warn("Skip send: session is not ready", "to", recipientRaw, "templateId", templateID)
		return domain.DeliveryHandle{}, domain.ErrSessionNotReady
	}

	text, err := s.renderer.Render(templateID, data)
	if err != nil {
		s.log.Error("Error sending message", "to", recipientRaw, "templateId", templateID, "error", err)
		return domain.DeliveryHandle{}, err
	}

	msg := domain.OutboundMessage{
		ID:                 uuid.NewString(),
		RecipientRaw:       recipientRaw,
		RecipientCanonical: phone.Normalize(recipientRaw),
		TemplateID:         templateID,
		RenderedText:       text,
		SubmittedAt:        s.now(),
	}

	messageID, err := s.session.SendText(ctx, msg.RecipientCanonical, msg.RenderedText)
	if err != nil {
		s.log.Error("Error sending message",
			"to", msg.RecipientCanonical,
			"templateId", templateID,
			"correlation_id", msg.ID,
			"error", err,
		)
		// гонка: сессия упала между проверкой и отправкой
		if errors.Is(err, domain.ErrSessionNotReady) {
			return domain.DeliveryHandle{}, err
		}
		return domain.DeliveryHandle{}, fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}

	s.log.Info("Message sent successfully",
		"to", msg.RecipientCanonical,
		"templateId", templateID,
		"messageId", messageID,
		"correlation_id", msg.ID,
		"duration", time.Since(msg.SubmittedAt),
	)

	return domain.DeliveryHandle{
		MessageID:   messageID,
		Recipient:   msg.RecipientCanonical,
		TemplateID:  templateID,
		SubmittedAt: msg.SubmittedAt,
	}, nil
}

func (s *DispatchService) SendWelcome(ctx context.Context, recipientRaw string, userData map[string]any) (domain.DeliveryHandle, error) {
	return s.Send(ctx, recipientRaw, domain.TemplateRegistration, userData)
}

// SendPaymentNotification: status "success" → paymentSuccess, всё остальное → paymentFailed
func (s *DispatchService) SendPaymentNotification(ctx context.Context, recipientRaw, status string, data map[string]any) (domain.DeliveryHandle, error) {
	templateID := domain.TemplatePaymentFailed
	if status == "success" {
		templateID = domain.TemplatePaymentSuccess
	}
	return s.Send(ctx, recipientRaw, templateID, data)
}

func (s *DispatchService) SendWithdrawalNotification(ctx context.Context, recipientRaw, status string, data map[string]any) (domain.DeliveryHandle, error) {
	templateID := domain.TemplateWithdrawalFailed
	if status == "success" {
		templateID = domain.TemplateWithdrawalSuccess
	}
	return s.Send(ctx, recipientRaw, templateID, data)
}

// SendSystemNotification подставляет текущее время в локальном формате
func (s *DispatchService) SendSystemNotification(ctx context.Context, recipientRaw, message string) (domain.DeliveryHandle, error) {
	data := map[string]any{
		"message":   message,
		"timestamp": s.now().In(s.loc).Format(TimestampLayout),
	}
	return s.Send(ctx, recipientRaw, domain.TemplateNotification, data)
}
