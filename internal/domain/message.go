package domain

import "time"

// InboundMessage описывает входящее сообщение от транспорта
type InboundMessage struct {
	Sender     string // каноничный адрес, например 6281234@c.us
	Body       string
	ReceivedAt time.Time
}

// OutboundMessage живёт только в рамках одного вызова send
type OutboundMessage struct {
	ID                 string
	RecipientRaw       string
	RecipientCanonical string
	TemplateID         string
	RenderedText       string
	SubmittedAt        time.Time
}

// DeliveryHandle возвращается после того, как транспорт принял сообщение
type DeliveryHandle struct {
	MessageID   string    `json:"messageId"`
	Recipient   string    `json:"recipient"`
	TemplateID  string    `json:"templateId"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// WithdrawalRequest: заявка на вывод, полученная командой !withdraw
type WithdrawalRequest struct {
	Sender      string
	Amount      string
	RequestedAt time.Time
}
