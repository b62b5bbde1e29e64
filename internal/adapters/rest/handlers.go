package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

const maxBodyBytes = 1 << 20

// SessionView: что HTTP нужно знать о сессии
type SessionView interface {
	Status() domain.Status
	PendingAuthArtifact(ctx context.Context) (string, bool, error)
}

// Notifier отправляет шаблонные сообщения
type Notifier interface {
	Send(ctx context.Context, phone, templateID string, data map[string]any) (domain.DeliveryHandle, error)
	SendWelcome(ctx context.Context, phone string, userData map[string]any) (domain.DeliveryHandle, error)
	SendPaymentNotification(ctx context.Context, phone, status string, data map[string]any) (domain.DeliveryHandle, error)
	SendWithdrawalNotification(ctx context.Context, phone, status string, data map[string]any) (domain.DeliveryHandle, error)
	SendSystemNotification(ctx context.Context, phone, message string) (domain.DeliveryHandle, error)
}

type Handler struct {
	log      *slog.Logger
	session  SessionView
	notifier Notifier
	now      func() time.Time
}

func NewHandler(log *slog.Logger, session SessionView, notifier Notifier) *Handler {
	return &Handler{log: log, session: session, notifier: notifier, now: time.Now}
}

// looseString принимает и строку, и число: номер телефона часто приходит числом
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

type sendRequest struct {
	Phone      looseString    `json:"phone"`
	TemplateID string         `json:"templateId"`
	Data       map[string]any `json:"data"`
}

type welcomeRequest struct {
	Phone    looseString    `json:"phone"`
	UserData map[string]any `json:"userData"`
}

type paymentRequest struct {
	Phone       looseString    `json:"phone"`
	Status      string         `json:"status"`
	PaymentData map[string]any `json:"paymentData"`
}

type withdrawalRequest struct {
	Phone          looseString    `json:"phone"`
	Status         string         `json:"status"`
	WithdrawalData map[string]any `json:"withdrawalData"`
}

type systemRequest struct {
	Phone   looseString `json:"phone"`
	Message string      `json:"message"`
}

type sentResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) GetQR(w http.ResponseWriter, r *http.Request) {
	uri, ok, err := h.session.PendingAuthArtifact(r.Context())
	if err != nil {
		h.log.Error("Error getting QR code", "error", err, "request_id", RequestID(r.Context()))
		writeError(w, statusFor(err), err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "QR Code not yet generated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "qrCode": uri})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": h.session.Status()})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Phone == "" || req.TemplateID == "" {
		writeError(w, http.StatusBadRequest, "Phone number and template ID are required")
		return
	}
	res, err := h.notifier.Send(r.Context(), string(req.Phone), req.TemplateID, req.Data)
	h.respond(w, r, "Error sending message", res, err)
}

func (h *Handler) SendWelcome(w http.ResponseWriter, r *http.Request) {
	var req welcomeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Phone == "" {
		writeError(w, http.StatusBadRequest, "Phone number is required")
		return
	}
	res, err := h.notifier.SendWelcome(r.Context(), string(req.Phone), req.UserData)
	h.respond(w, r, "Error sending welcome message", res, err)
}

func (h *Handler) SendPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Phone == "" || req.Status == "" || req.PaymentData == nil {
		writeError(w, http.StatusBadRequest, "Phone number, status, and payment data are required")
		return
	}
	res, err := h.notifier.SendPaymentNotification(r.Context(), string(req.Phone), req.Status, req.PaymentData)
	h.respond(w, r, "Error sending payment notification", res, err)
}

func (h *Handler) SendWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Phone == "" || req.Status == "" || req.WithdrawalData == nil {
		writeError(w, http.StatusBadRequest, "Phone number, status, and withdrawal data are required")
		return
	}
	res, err := h.notifier.SendWithdrawalNotification(r.Context(), string(req.Phone), req.Status, req.WithdrawalData)
	h.respond(w, r, "Error sending withdrawal notification", res, err)
}

func (h *Handler) SendSystem(w http.ResponseWriter, r *http.Request) {
	var req systemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Phone == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Phone number and message are required")
		return
	}
	res, err := h.notifier.SendSystemNotification(r.Context(), string(req.Phone), req.Message)
	h.respond(w, r, "Error sending system notification", res, err)
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Route not found")
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.log.Warn("invalid request body", "path", r.URL.Path, "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, what string, res domain.DeliveryHandle, err error) {
	if err != nil {
		status := statusFor(err)
		h.log.Error(what, "error", err, "status", status, "request_id", RequestID(r.Context()))
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sentResponse{Success: true, MessageID: res.MessageID})
}
