package useCases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/templates"
)

// stubSession считает обращения к транспорту
type stubSession struct {
	mu    sync.Mutex
	ready bool
	err   error
	sent  []sentText
}

func (s *stubSession) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *stubSession) SendText(ctx context.Context, to, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentText{to: to, text: text})
	if s.err != nil {
		return "", s.err
	}
	return "true_" + to + "_3EB0", nil
}

func newDispatch(sess Session) *DispatchService {
	return NewDispatchService(discardLogger(), sess, templates.NewRenderer(templates.Default()), time.UTC)
}

func TestDispatch_NotReady(t *testing.T) {
	sess := &stubSession{}
	svc := newDispatch(sess)

	_, err := svc.Send(context.Background(), "081234", domain.TemplateRegistration, nil)
	require.ErrorIs(t, err, domain.ErrSessionNotReady)
	assert.Empty(t, sess.sent, "no transport call while not ready")
}

func TestDispatch_Success(t *testing.T) {
	sess := &stubSession{ready: true}
	svc := newDispatch(sess)

	h, err := svc.Send(context.Background(), "0812-34", domain.TemplatePaymentSuccess, map[string]any{
		"date":        "2024-01-01",
		"amount":      float64(150000),
		"description": "Langganan",
	})
	require.NoError(t, err)

	assert.Equal(t, "true_6281234@c.us_3EB0", h.MessageID)
	assert.Equal(t, "6281234@c.us", h.Recipient)
	assert.Equal(t, domain.TemplatePaymentSuccess, h.TemplateID)
	assert.False(t, h.SubmittedAt.IsZero())

	require.Len(t, sess.sent, 1)
	assert.Equal(t, "6281234@c.us", sess.sent[0].to)
	assert.Contains(t, sess.sent[0].text, "Jumlah: Rp 150000")
	assert.Contains(t, sess.sent[0].text, "Deskripsi: Langganan")
}

func TestDispatch_UnknownTemplate(t *testing.T) {
	sess := &stubSession{ready: true}
	svc := newDispatch(sess)

	_, err := svc.Send(context.Background(), "081234", "missing_id", nil)
	require.ErrorIs(t, err, domain.ErrTemplateNotFound)
	assert.Empty(t, sess.sent)
}

func TestDispatch_DeliveryFailed(t *testing.T) {
	sess := &stubSession{ready: true, err: errBoom}
	svc := newDispatch(sess)

	_, err := svc.Send(context.Background(), "081234", domain.TemplateRegistration, nil)
	require.ErrorIs(t, err, domain.ErrDeliveryFailed)
	require.ErrorIs(t, err, errBoom)
	assert.Len(t, sess.sent, 1, "no automatic retry")
}

func TestDispatch_SessionDroppedMidSend(t *testing.T) {
	sess := &stubSession{ready: true, err: domain.ErrSessionNotReady}
	svc := newDispatch(sess)

	_, err := svc.Send(context.Background(), "081234", domain.TemplateRegistration, nil)
	require.ErrorIs(t, err, domain.ErrSessionNotReady)
	assert.NotErrorIs(t, err, domain.ErrDeliveryFailed)
}

func TestDispatch_NotificationRouting(t *testing.T) {
	cases := []struct {
		name string
		send func(*DispatchService) error
		want string
	}{
		{"payment success", func(s *DispatchService) error {
			_, err := s.SendPaymentNotification(context.Background(), "081", "success", nil)
			return err
		}, "PEMBAYARAN BERHASIL"},
		{"payment failed", func(s *DispatchService) error {
			_, err := s.SendPaymentNotification(context.Background(), "081", "failed", nil)
			return err
		}, "PEMBAYARAN GAGAL"},
		{"withdrawal success", func(s *DispatchService) error {
			_, err := s.SendWithdrawalNotification(context.Background(), "081", "success", nil)
			return err
		}, "WITHDRAWAL BERHASIL"},
		{"withdrawal other", func(s *DispatchService) error {
			_, err := s.SendWithdrawalNotification(context.Background(), "081", "pending", nil)
			return err
		}, "WITHDRAWAL GAGAL"},
		{"welcome", func(s *DispatchService) error {
			_, err := s.SendWelcome(context.Background(), "081", map[string]any{"name": "Budi"})
			return err
		}, "Selamat datang"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess := &stubSession{ready: true}
			require.NoError(t, tc.send(newDispatch(sess)))
			require.Len(t, sess.sent, 1)
			assert.Contains(t, sess.sent[0].text, tc.want)
		})
	}
}

func TestDispatch_SystemNotificationTimestamp(t *testing.T) {
	sess := &stubSession{ready: true}
	wib := time.FixedZone("WIB", 7*60*60)
	svc := NewDispatchService(discardLogger(), sess, templates.NewRenderer(templates.Default()), wib)
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	_, err := svc.SendSystemNotification(context.Background(), "081234", "Maintenance malam ini")
	require.NoError(t, err)

	require.Len(t, sess.sent, 1)
	assert.Contains(t, sess.sent[0].text, "Maintenance malam ini")
	assert.Contains(t, sess.sent[0].text, "Waktu: 02/01/2024, 10.04.05")
}
